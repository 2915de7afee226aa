package workflow

import (
	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/router"
)

func registerSupport(r *Registry) {
	r.Register(AnyTier, bus.KindCustomerTicket, handleCustomerTicket)
	r.Register(AnyTier, bus.KindBugReport, handleBugReport)
	r.Register(AnyTier, bus.KindBugFixed, handleBugFixed)
	r.Register(AnyTier, bus.KindTicketResolved, handleTicketResolved)
}

// handleCustomerTicket triages a ticket. Defects go to backend engineering;
// every bug currently lands there regardless of domain.
func handleCustomerTicket(env Env, msg bus.Message) agent.Result {
	if !router.Triage(msg.Payload) {
		return complete("Triage: General Inquiry. Replying to Customer.")
	}
	intent := msg.Intent
	intent.Work = bus.WorkFix
	out := send(env, msg, RoleEMBackend, bus.KindBugReport, "BUG_REPORT: "+msg.Payload).
		WithIntent(intent).
		WithTicket(bus.Ticket{ID: msg.ID, Reporter: env.Self.Role})
	return emit([]string{"Triage: Critical Bug Detected. Escalating to Engineering."}, out)
}

func handleBugReport(env Env, msg bus.Message) agent.Result {
	if !env.Self.HasReports() {
		return agent.Result{Notes: []string{"No one to assign the bug fix to."}}
	}
	target := env.Self.DirectReports[0]
	return emit([]string{"Assigning Bug Fix to [" + target + "]"},
		send(env, msg, target, bus.KindTask, "URGENT FIX: "+msg.Payload))
}

func handleBugFixed(env Env, msg bus.Message) agent.Result {
	reporter := msg.Ticket.Reporter
	if reporter == "" {
		reporter = env.Self.Role
	}
	return emit([]string{"Fix Confirmed by Engineering."},
		send(env, msg, reporter, bus.KindTicketResolved, "FIX DEPLOYED: "+msg.Payload))
}

func handleTicketResolved(env Env, msg bus.Message) agent.Result {
	return complete("Closing Ticket. Emailing Customer: 'Your issue is resolved.'")
}
