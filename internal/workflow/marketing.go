package workflow

import (
	"fmt"
	"strings"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

func registerMarketing(r *Registry) {
	r.Register(AnyTier, bus.KindMarketingCampaign, handleCampaign)
	r.Register(AnyTier, bus.KindPostContent, handlePost)
	r.Register(agent.TierDirector, bus.KindPostContent, handleDirectorPost)
	r.Register(AnyTier, bus.KindCommunityEvent, handleCommunityEvent)
	r.Register(AnyTier, bus.KindSentimentReport, handleSentimentReport)
}

// fanOut sends one message per direct report.
func fanOut(env Env, msg bus.Message, kind bus.Kind, payload string) []bus.Message {
	out := make([]bus.Message, 0, len(env.Self.DirectReports))
	for _, r := range env.Self.DirectReports {
		out = append(out, send(env, msg, r, kind, payload))
	}
	return out
}

// handleCampaign briefs every direct report.
func handleCampaign(env Env, msg bus.Message) agent.Result {
	if !env.Self.HasReports() {
		return agent.Result{Notes: []string{"Campaign brief received with no team to brief."}}
	}
	return emit([]string{"Briefing Directors on Strategy."},
		fanOut(env, msg, bus.KindPostContent, "EXECUTE PROMO: "+msg.Payload)...)
}

// handleDirectorPost splits a promo into per-platform asset requests.
func handleDirectorPost(env Env, msg bus.Message) agent.Result {
	if !env.Self.HasReports() {
		return handlePost(env, msg)
	}
	platform := "Social"
	if strings.Contains(env.Self.Role, "Community") {
		platform = "Community"
	}
	return emit([]string{"Preparing content: " + msg.Payload},
		fanOut(env, msg, bus.KindPostContent, fmt.Sprintf("Generate %s Assets for: %s", platform, msg.Payload))...)
}

// handlePost publishes and schedules a look at the reactions.
func handlePost(env Env, msg bus.Message) agent.Result {
	return emit([]string{"POSTING TO CHANNEL: " + msg.Payload},
		send(env, msg, env.Self.Role, bus.KindCommunityEvent, "Check User Reactions"))
}

func handleCommunityEvent(env Env, msg bus.Message) agent.Result {
	signal, summary := sentimentFor(env.Self.Role)
	out := send(env, msg, RoleProductManager, bus.KindSentimentReport, "User Sentiment Analysis: "+summary).
		WithSignal(signal)
	return emit([]string{"Monitoring live feed..."}, out)
}

func sentimentFor(role string) (bus.Signal, string) {
	switch {
	case strings.Contains(role, "Twitch"):
		return bus.SignalHype, "HYPE! POGGERS! (Very Positive)"
	case strings.Contains(role, "Discord"):
		return bus.SignalConstructive, "Constructive Feedback: UI looks good but text is small."
	default:
		return bus.SignalPositive, "Positive"
	}
}

func handleSentimentReport(env Env, msg bus.Message) agent.Result {
	notes := []string{"Analyzing User Feedback: " + msg.Payload}
	if msg.Signal == bus.SignalConstructive {
		notes = append(notes, "Creating Improvement Story based on Feedback.")
	}
	return complete(notes...)
}
