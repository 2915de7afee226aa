package workflow

import (
	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

func registerPeople(r *Registry) {
	r.Register(AnyTier, bus.KindHeadcountRequest, handleHeadcount)
	r.Register(agent.TierCSuite, bus.KindHeadcountRequest, handleExecutiveHeadcount)
	r.Register(AnyTier, bus.KindBudgetCheck, handleBudgetCheck)
	r.Register(AnyTier, bus.KindBudgetApproved, handleBudgetApproved)
	r.Register(AnyTier, bus.KindInitiateHiring, handleInitiateHiring)
	r.Register(AnyTier, bus.KindNewHireOnboarded, handleNewHireOnboarded)
}

func requesterOf(msg bus.Message) string {
	if msg.Requester != "" {
		return msg.Requester
	}
	return msg.SenderRole
}

// handleHeadcount escalates a hiring request one level up the reporting line.
func handleHeadcount(env Env, msg bus.Message) agent.Result {
	if env.Self.ReportsTo == "" {
		return agent.Result{Notes: []string{"No one to escalate HEADCOUNT_REQUEST to."}}
	}
	out := send(env, msg, env.Self.ReportsTo, bus.KindHeadcountRequest, msg.Payload).
		WithRequester(requesterOf(msg))
	return emit([]string{"Reviewing HEADCOUNT_REQUEST: " + msg.Payload}, out)
}

// handleExecutiveHeadcount approves the need and asks finance for budget.
func handleExecutiveHeadcount(env Env, msg bus.Message) agent.Result {
	out := send(env, msg, RoleCFO, bus.KindBudgetCheck, msg.Payload).WithRequester(requesterOf(msg))
	return emit([]string{"Approving tech need. Forwarding to CFO for Budget."}, out)
}

func handleBudgetCheck(env Env, msg bus.Message) agent.Result {
	return emit([]string{"Checking budget for: " + msg.Payload},
		send(env, msg, RoleVPPeople, bus.KindBudgetApproved, msg.Payload))
}

func handleBudgetApproved(env Env, msg bus.Message) agent.Result {
	return emit([]string{"Received Budget Approval. Assigning Recruiter."},
		send(env, msg, RoleRecruiter, bus.KindInitiateHiring, msg.Payload))
}

// handleInitiateHiring finds a candidate and notifies the manager who asked.
func handleInitiateHiring(env Env, msg bus.Message) agent.Result {
	manager := requesterOf(msg)
	return emit([]string{"Searching for candidate: " + msg.Payload, "Candidate Found! Onboarding started."},
		send(env, msg, manager, bus.KindNewHireOnboarded, "New Hire Onboarded: "+msg.Payload))
}

func handleNewHireOnboarded(env Env, msg bus.Message) agent.Result {
	return complete("Welcome to the team! " + msg.Payload)
}
