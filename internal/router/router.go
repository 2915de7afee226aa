// Package router turns free-text work descriptions into structured intents.
// It runs once at the edge of the system, when a scenario or operator injects
// a message; agents inside the simulation route on the intent only.
package router

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/dayuer/virtualco/internal/bus"
)

const cacheMax = 256

type keywordRoute[T any] struct {
	value    T
	keywords []string
}

// domainRoutes is scored in order; the first highest score wins ties.
var domainRoutes = []keywordRoute[bus.Domain]{
	{bus.DomainDatabase, []string{"database", "sql", "query", "migration", "migrations", "schema", "dba", "index"}},
	{bus.DomainBackend, []string{"backend", "api", "service", "endpoint", "checkout", "payment", "server"}},
	{bus.DomainFrontend, []string{"frontend", "ui", "interface", "page", "css", "web", "button"}},
	{bus.DomainMobile, []string{"mobile", "app", "ios", "android"}},
	{bus.DomainDesign, []string{"design", "brand", "identity", "wireframe", "mockup", "navigation"}},
}

var workRoutes = []keywordRoute[bus.Work]{
	{bus.WorkFix, []string{"fix", "bug", "error", "crash", "broken", "outage"}},
	{bus.WorkFeature, []string{"implement", "feature", "build", "add", "launch"}},
	{bus.WorkOps, []string{"optimize", "urgent", "slow", "migrate", "missing", "recovery"}},
}

var triageKeywords = []string{"error", "crash"}

// Classify scores text against the keyword tables.
func Classify(text string) bus.Intent {
	words := tokenize(text)
	return bus.Intent{
		Domain: best(domainRoutes, words),
		Work:   best(workRoutes, words),
	}
}

// Triage reports whether a customer ticket describes a defect that needs
// engineering. Any mention of an error or a crash counts, including inside a
// longer word such as "Crashed" or "ErrorCode".
func Triage(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range triageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func best[T any](routes []keywordRoute[T], words map[string]bool) T {
	var winner T
	bestScore := 0
	for _, r := range routes {
		s := 0
		for _, kw := range r.keywords {
			if words[kw] {
				s++
			}
		}
		if s > bestScore {
			bestScore = s
			winner = r.value
		}
	}
	return winner
}

func tokenize(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := make(map[string]bool, len(fields))
	for _, f := range fields {
		words[f] = true
	}
	return words
}

// Classifier memoizes Classify for repeated payloads.
type Classifier struct {
	mu     sync.Mutex
	cache  map[string]bus.Intent
	hits   int
	misses int
}

// NewClassifier creates an empty classifier.
func NewClassifier() *Classifier {
	return &Classifier{cache: make(map[string]bus.Intent, cacheMax)}
}

// Classify returns the intent for text, computing it at most once per payload
// while the cache has room.
func (c *Classifier) Classify(text string) bus.Intent {
	key := contentHash(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if intent, ok := c.cache[key]; ok {
		c.hits++
		return intent
	}
	c.misses++
	intent := Classify(text)
	if len(c.cache) < cacheMax {
		c.cache[key] = intent
	}
	return intent
}

// Stats returns cache hit and miss counts.
func (c *Classifier) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func contentHash(text string) string {
	h := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(text))))
	return fmt.Sprintf("%x", h)
}
