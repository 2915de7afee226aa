// Package bus provides the role-addressed message bus that connects agents.
package bus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dayuer/virtualco/internal/utils"
)

// ErrUnknownKind is returned by ParseKind for names outside the closed set.
var ErrUnknownKind = errors.New("unknown message kind")

// Kind is the workflow message type.
type Kind string

const (
	KindTask               Kind = "TASK"
	KindDone               Kind = "DONE"
	KindSpecReady          Kind = "SPEC_READY"
	KindReviewRequest      Kind = "REVIEW_REQUEST"
	KindDeployApproved     Kind = "DEPLOY_APPROVED"
	KindDirect             Kind = "DIRECT"
	KindBroadcast          Kind = "BROADCAST"
	KindStatusRequest      Kind = "STATUS_REQUEST"
	KindAuditCheck         Kind = "AUDIT_CHECK"
	KindAuditReport        Kind = "AUDIT_REPORT"
	KindTaskMissing        Kind = "TASK_MISSING"
	KindReqChange          Kind = "REQ_CHANGE"
	KindHeadcountRequest   Kind = "HEADCOUNT_REQUEST"
	KindBudgetCheck        Kind = "BUDGET_CHECK"
	KindBudgetApproved     Kind = "BUDGET_APPROVED"
	KindInitiateHiring     Kind = "INITIATE_HIRING"
	KindNewHireOnboarded   Kind = "NEW_HIRE_ONBOARDED"
	KindProcessHealthCheck Kind = "PROCESS_HEALTH_CHECK"
	KindProcessStatus      Kind = "PROCESS_STATUS"
	KindExpedite           Kind = "EXPEDITE"
	KindCustomerTicket     Kind = "CUSTOMER_TICKET"
	KindBugReport          Kind = "BUG_REPORT"
	KindBugFixed           Kind = "BUG_FIXED"
	KindTicketResolved     Kind = "TICKET_RESOLVED"
	KindMarketingCampaign  Kind = "MARKETING_CAMPAIGN"
	KindPostContent        Kind = "POST_CONTENT"
	KindCommunityEvent     Kind = "COMMUNITY_EVENT"
	KindSentimentReport    Kind = "SENTIMENT_REPORT"
	KindAssetRequest       Kind = "ASSET_REQUEST"
	KindUserResearch       Kind = "USER_RESEARCH"
	KindResearchFindings   Kind = "RESEARCH_FINDINGS"
	KindDesignReview       Kind = "DESIGN_REVIEW"
)

// Kinds lists every message kind in declaration order.
var Kinds = []Kind{
	KindTask, KindDone, KindSpecReady, KindReviewRequest, KindDeployApproved,
	KindDirect, KindBroadcast, KindStatusRequest, KindAuditCheck, KindAuditReport,
	KindTaskMissing, KindReqChange, KindHeadcountRequest, KindBudgetCheck,
	KindBudgetApproved, KindInitiateHiring, KindNewHireOnboarded,
	KindProcessHealthCheck, KindProcessStatus, KindExpedite, KindCustomerTicket,
	KindBugReport, KindBugFixed, KindTicketResolved, KindMarketingCampaign,
	KindPostContent, KindCommunityEvent, KindSentimentReport, KindAssetRequest,
	KindUserResearch, KindResearchFindings, KindDesignReview,
}

// ParseKind maps a case-insensitive kind name onto the closed set.
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Domain is the technical area a piece of work belongs to.
type Domain string

const (
	DomainNone     Domain = ""
	DomainBackend  Domain = "backend"
	DomainFrontend Domain = "frontend"
	DomainDatabase Domain = "database"
	DomainMobile   Domain = "mobile"
	DomainDesign   Domain = "design"
)

// Work is the nature of a piece of work.
type Work string

const (
	WorkNone    Work = ""
	WorkFeature Work = "feature"
	WorkFix     Work = "fix"
	WorkOps     Work = "ops"
)

// Intent is the structured routing tag carried by a message.
// Handlers route on it instead of inspecting the payload text.
type Intent struct {
	Domain Domain `json:"domain,omitempty" yaml:"domain,omitempty"`
	Work   Work   `json:"work,omitempty" yaml:"work,omitempty"`
}

// IsZero reports whether no routing information has been attached.
func (i Intent) IsZero() bool {
	return i.Domain == DomainNone && i.Work == WorkNone
}

func (i Intent) String() string {
	d, w := string(i.Domain), string(i.Work)
	if d == "" {
		d = "-"
	}
	if w == "" {
		w = "-"
	}
	return d + "/" + w
}

// Ticket links a bug-fix chain back to the support agent that raised it.
type Ticket struct {
	ID       string `json:"id,omitempty"`
	Reporter string `json:"reporter,omitempty"`
}

// IsZero reports whether the message is unrelated to a support ticket.
func (t Ticket) IsZero() bool {
	return t.ID == "" && t.Reporter == ""
}

// Signal is a structured status attached to status and sentiment reports.
type Signal string

const (
	SignalNone         Signal = ""
	SignalOK           Signal = "ok"
	SignalStuck        Signal = "stuck"
	SignalPositive     Signal = "positive"
	SignalHype         Signal = "hype"
	SignalConstructive Signal = "constructive"
)

// ErrUnknownSignal is returned by ParseSignal for names outside the closed set.
var ErrUnknownSignal = errors.New("unknown signal")

// ParseSignal resolves a case-insensitive signal name. Empty means none.
func ParseSignal(s string) (Signal, error) {
	name := Signal(strings.ToLower(strings.TrimSpace(s)))
	switch name {
	case SignalNone, SignalOK, SignalStuck, SignalPositive, SignalHype, SignalConstructive:
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSignal, s)
}

// Message is the immutable unit of communication between agents.
// Values are copied on every hop; use the With* helpers to derive variants.
type Message struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlationId,omitempty"`
	SenderID      string    `json:"senderId"`
	SenderRole    string    `json:"senderRole"`
	ReceiverRole  string    `json:"receiverRole"`
	Payload       string    `json:"payload"`
	Kind          Kind      `json:"kind"`
	Intent        Intent    `json:"intent"`
	Level         int       `json:"level,omitempty"`
	Requester     string    `json:"requester,omitempty"`
	Ticket        Ticket    `json:"ticket,omitempty"`
	Signal        Signal    `json:"signal,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewMessage creates a message with a fresh time-ordered ID.
func NewMessage(senderID, senderRole, receiverRole string, kind Kind, payload string) Message {
	return Message{
		ID:           newID(),
		SenderID:     senderID,
		SenderRole:   senderRole,
		ReceiverRole: receiverRole,
		Payload:      payload,
		Kind:         kind,
		CreatedAt:    time.Now().UTC(),
	}
}

// Derive creates the next hop of a workflow. Correlation, intent, requester
// and ticket are inherited; level and signal start empty.
func (m Message) Derive(senderID, senderRole, receiverRole string, kind Kind, payload string) Message {
	next := NewMessage(senderID, senderRole, receiverRole, kind, payload)
	next.CorrelationID = m.CorrelationID
	next.Intent = m.Intent
	next.Requester = m.Requester
	next.Ticket = m.Ticket
	return next
}

// WithCorrelation returns a copy tagged with the given workflow ID.
func (m Message) WithCorrelation(id string) Message {
	m.CorrelationID = id
	return m
}

// WithIntent returns a copy carrying the given intent.
func (m Message) WithIntent(i Intent) Message {
	m.Intent = i
	return m
}

// WithLevel returns a copy at the given review level.
func (m Message) WithLevel(level int) Message {
	m.Level = level
	return m
}

// WithRequester returns a copy that remembers the originating role.
func (m Message) WithRequester(role string) Message {
	m.Requester = role
	return m
}

// WithTicket returns a copy linked to a support ticket.
func (m Message) WithTicket(t Ticket) Message {
	m.Ticket = t
	return m
}

// WithSignal returns a copy carrying a structured status.
func (m Message) WithSignal(s Signal) Message {
	m.Signal = s
	return m
}

// Preview returns the payload shortened for log lines.
func (m Message) Preview() string {
	return utils.TruncateString(m.Payload, 50, "...")
}

func (m Message) String() string {
	return fmt.Sprintf("%s -> %s [%s]", m.SenderRole, m.ReceiverRole, m.Kind)
}

// NewCorrelationID returns an ID for a new workflow.
func NewCorrelationID() string {
	return newID()
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
