package workflow

import (
	"fmt"
	"strings"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

func registerOperations(r *Registry) {
	r.Register(AnyTier, bus.KindProcessHealthCheck, handleProcessHealthCheck)
	r.Register(AnyTier, bus.KindProcessStatus, handleProcessStatus)
	r.Register(AnyTier, bus.KindExpedite, handleExpedite)
	r.Register(AnyTier, bus.KindAuditCheck, handleAuditCheck)
	r.Register(AnyTier, bus.KindAuditReport, handleTerminal)
	r.Register(AnyTier, bus.KindTaskMissing, handleTaskMissing)
	r.Register(AnyTier, bus.KindReqChange, handleReqChange)
	r.Register(AnyTier, bus.KindStatusRequest, handleStatusRequest)
	r.Register(AnyTier, bus.KindDirect, handleTerminal)
	r.Register(AnyTier, bus.KindBroadcast, handleTerminal)
}

func handleTerminal(env Env, msg bus.Message) agent.Result {
	return complete()
}

// handleProcessHealthCheck reports whether approvals are piling up here.
func handleProcessHealthCheck(env Env, msg bus.Message) agent.Result {
	notes := []string{"Reporting status to [" + msg.SenderRole + "]."}
	if n := env.Self.Backlog; n > 0 {
		status := fmt.Sprintf("WARNING: %d PENDING APPROVAL (Stuck > 3 Ticks). Awaiting Vendor Review.", n)
		return emit(notes, send(env, msg, msg.SenderRole, bus.KindProcessStatus, status).WithSignal(bus.SignalStuck))
	}
	return emit(notes, send(env, msg, msg.SenderRole, bus.KindProcessStatus, "All Processes Normal. 0 Pending.").
		WithSignal(bus.SignalOK))
}

// handleProcessStatus expedites a stuck report. A report without a signal is
// judged by its text.
func handleProcessStatus(env Env, msg bus.Message) agent.Result {
	if !reportsStuck(msg) {
		return complete(fmt.Sprintf("Verified Health of [%s]: OK.", msg.SenderRole))
	}
	return emit([]string{fmt.Sprintf("Detected Bottleneck at [%s]. Issuing EXPEDITE Order.", msg.SenderRole)},
		send(env, msg, msg.SenderRole, bus.KindExpedite, "EXPEDITE: Immediately resolve pending items."))
}

func reportsStuck(msg bus.Message) bool {
	if msg.Signal != bus.SignalNone {
		return msg.Signal == bus.SignalStuck
	}
	text := strings.ToLower(msg.Payload)
	return strings.Contains(text, "warning") || strings.Contains(text, "stuck")
}

// handleExpedite clears the backlog and confirms to whoever ordered it.
func handleExpedite(env Env, msg bus.Message) agent.Result {
	res := emit([]string{"RECEIVED EXPEDITE ORDER. Approving Pending Items Immediately."},
		send(env, msg, msg.SenderRole, bus.KindDone,
			fmt.Sprintf("EXPEDITE COMPLETED: %d Pending Item(s) Approved.", env.Self.Backlog)))
	res.ClearBacklog = true
	return res
}

func handleAuditCheck(env Env, msg bus.Message) agent.Result {
	report := fmt.Sprintf("Audit Status: %d tasks processed.", env.Self.Processed)
	return emit([]string{"Received Audit Request from [" + msg.SenderRole + "]."},
		send(env, msg, msg.SenderRole, bus.KindAuditReport, report))
}

// handleTaskMissing re-issues a lost task to the report owning its domain.
func handleTaskMissing(env Env, msg bus.Message) agent.Result {
	if !env.Self.HasReports() {
		return agent.Result{Notes: []string{"CRITICAL ALERT: " + msg.Payload + " (no one to escalate to)"}}
	}
	recovery := msg.Intent
	recovery.Work = bus.WorkOps
	target := delegateTarget(env.Self.DirectReports, recovery)
	out := send(env, msg, target, bus.KindTask, "URGENT_RECOVERY: "+msg.Payload).WithIntent(recovery)
	return emit([]string{"CRITICAL ALERT: " + msg.Payload, "Escalating MISSING TASK to [" + target + "]"}, out)
}

// handleReqChange pushes a scope change down to the first report; an
// individual contributor acknowledges it to the sender.
func handleReqChange(env Env, msg bus.Message) agent.Result {
	if env.Self.HasReports() {
		target := env.Self.DirectReports[0]
		return emit([]string{"Received Scope Update. Passing to [" + target + "]."},
			send(env, msg, target, bus.KindReqChange, "SCOPE_UPDATE: "+msg.Payload))
	}
	return emit([]string{"Received Scope Update: " + msg.Payload},
		send(env, msg, msg.SenderRole, bus.KindDirect, "Acknowledged Scope Change. Adjusting implementation for: "+msg.Payload))
}

func handleStatusRequest(env Env, msg bus.Message) agent.Result {
	return emit(nil, send(env, msg, msg.SenderRole, bus.KindDirect,
		fmt.Sprintf("Report from %s: All systems nominal. Working on assigned tasks.", env.Self.Role)))
}
