package workflow

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/utils"
)

// finalReviewLevel is the architect sign-off; approval follows it.
const finalReviewLevel = 4

var levelPattern = regexp.MustCompile(`Level (\d+)`)

func registerEngineering(r *Registry) {
	r.Register(AnyTier, bus.KindTask, handleTask)
	r.Register(agent.TierArchitect, bus.KindTask, handleArchitectTask)
	r.Register(AnyTier, bus.KindSpecReady, handleSpecReady)
	r.Register(AnyTier, bus.KindReviewRequest, handleReview)
	r.Register(AnyTier, bus.KindDeployApproved, handleDeployApproved)
	r.Register(AnyTier, bus.KindDone, handleDone)
	r.Register(agent.TierManager, bus.KindDone, handleManagerDone)
}

// handleTask delegates down when the receiver has reports; otherwise the
// receiver does the work. Developers then open a review, everyone else
// reports completion to whoever assigned the task.
func handleTask(env Env, msg bus.Message) agent.Result {
	self := env.Self
	if self.HasReports() {
		target := delegateTarget(self.DirectReports, msg.Intent)
		return emit([]string{fmt.Sprintf("Delegating to [%s] (%s)", target, msg.Intent)},
			send(env, msg, target, bus.KindTask, "DELEGATED: "+msg.Payload))
	}

	if self.IsDeveloper() {
		out := send(env, msg, "", bus.KindReviewRequest, "REVIEW_REQUEST (Level 1): "+msg.Payload).
			WithRequester(self.Role)
		peer := nextPeer(env.Dir, self.Role)
		if peer == "" {
			out.ReceiverRole = CategoryDevOps
			out.Payload = "REVIEW_REQUEST (Level 2): " + msg.Payload
			return emit([]string{"Work finished. No peer available, requesting DevOps Review."}, out.WithLevel(2))
		}
		out.ReceiverRole = peer
		return emit([]string{"Work finished. Requesting Peer Review from [" + peer + "]."}, out.WithLevel(1))
	}

	done := fmt.Sprintf("Task '%s' COMPLETED by %s.", utils.TruncateString(msg.Payload, 23, "..."), self.Role)
	return emit([]string{"Work finished."}, send(env, msg, msg.SenderRole, bus.KindDone, done))
}

// handleArchitectTask answers a task with a specification for the architect's manager.
func handleArchitectTask(env Env, msg bus.Message) agent.Result {
	if env.Self.HasReports() || env.Self.ReportsTo == "" {
		return handleTask(env, msg)
	}
	return emit([]string{"Specification written."},
		send(env, msg, env.Self.ReportsTo, bus.KindSpecReady, "SPECIFICATION READY for: "+msg.Payload))
}

func handleSpecReady(env Env, msg bus.Message) agent.Result {
	target := specOwner(msg.Intent.Domain)
	return emit([]string{fmt.Sprintf("RECEIVED SPEC from [%s]. Forwarding to [%s].", msg.SenderRole, target)},
		send(env, msg, target, bus.KindTask, "IMPLEMENT: "+msg.Payload))
}

// handleReview advances the review chain: peer, DevOps, Security, architect,
// then approval back to the author.
func handleReview(env Env, msg bus.Message) agent.Result {
	level := reviewLevel(msg)
	notes := []string{fmt.Sprintf("Performing Level %d review.", level)}

	if level >= finalReviewLevel {
		author := msg.Requester
		if author == "" {
			author = msg.SenderRole
		}
		approved := send(env, msg, author, bus.KindDeployApproved, "DEPLOY_APPROVED: "+msg.Payload)
		return emit(append(notes, "Approved for deployment."), approved)
	}

	var next string
	switch level {
	case 1:
		next = CategoryDevOps
	case 2:
		next = CategorySecurity
	default:
		next = reviewArchitect(msg.Intent.Domain)
	}
	payload := levelPattern.ReplaceAllString(msg.Payload, "Level "+strconv.Itoa(level+1))
	out := send(env, msg, next, bus.KindReviewRequest, payload).WithLevel(level + 1)
	return emit(notes, out)
}

func reviewLevel(msg bus.Message) int {
	if msg.Level > 0 {
		return msg.Level
	}
	if m := levelPattern.FindStringSubmatch(msg.Payload); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func handleDeployApproved(env Env, msg bus.Message) agent.Result {
	notes := []string{"DEPLOYMENT GREENLIT! Merging to Main."}
	if env.Self.ReportsTo == "" {
		return complete(notes...)
	}
	return emit(notes, send(env, msg, env.Self.ReportsTo, bus.KindDone, "Task Completed and Deployed: "+msg.Payload))
}

// handleDone acknowledges and passes completion up the reporting line.
func handleDone(env Env, msg bus.Message) agent.Result {
	ack := fmt.Sprintf("ACKNOWLEDGED completion from [%s]", msg.SenderRole)
	if env.Self.ReportsTo == "" {
		return complete(ack)
	}
	return emit([]string{ack}, send(env, msg, env.Self.ReportsTo, bus.KindDone, msg.Payload))
}

// handleManagerDone closes the support loop when the finished work was a
// ticket fix.
func handleManagerDone(env Env, msg bus.Message) agent.Result {
	if msg.Ticket.IsZero() {
		return handleDone(env, msg)
	}
	reporter := msg.Ticket.Reporter
	return emit([]string{"Bug Fix Deployed. Closing loop with [" + reporter + "]."},
		send(env, msg, reporter, bus.KindBugFixed, msg.Payload))
}
