package workflow

import (
	"strings"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

const researchFinding = "Key Finding: Users are confused by the navigation bar."

func registerDesign(r *Registry) {
	r.Register(agent.TierDirector, bus.KindAssetRequest, handleAssetRequest)
	r.Register(AnyTier, bus.KindUserResearch, handleUserResearch)
	r.Register(AnyTier, bus.KindResearchFindings, handleResearchFindings)
	r.Register(agent.TierManager, bus.KindDesignReview, handleDesignReview)
}

func designIntent(msg bus.Message) bus.Intent {
	return bus.Intent{Domain: bus.DomainDesign, Work: msg.Intent.Work}
}

// handleAssetRequest commissions the creative studio.
func handleAssetRequest(env Env, msg bus.Message) agent.Result {
	if !strings.Contains(env.Self.Role, "Creative") {
		return agent.Result{Notes: []string{"Received asset request outside the studio: " + msg.Payload}}
	}
	intent := designIntent(msg)
	return emit([]string{"Commissioning Creative Studio."},
		send(env, msg, RoleBrandDesigner, bus.KindTask, "Create Assets: "+msg.Payload).WithIntent(intent),
		send(env, msg, RoleMotionDesigner, bus.KindTask, "Animate Assets: "+msg.Payload).WithIntent(intent),
	)
}

func handleUserResearch(env Env, msg bus.Message) agent.Result {
	return emit([]string{"Conducting study: " + msg.Payload, "Interviewing 5 Users... Synthesizing Data..."},
		send(env, msg, RoleProductManager, bus.KindResearchFindings, "Research Report: "+researchFinding))
}

func handleResearchFindings(env Env, msg bus.Message) agent.Result {
	return emit([]string{"Updating Roadmap. Triggering Design Review."},
		send(env, msg, RoleDesignLead, bus.KindDesignReview, "Redesign Navigation based on: "+msg.Payload))
}

// handleDesignReview splits a redesign between interaction and visual design.
func handleDesignReview(env Env, msg bus.Message) agent.Result {
	if !strings.Contains(env.Self.Role, "Lead") {
		return agent.Result{Notes: []string{"Reviewing Requirements: " + msg.Payload}}
	}
	intent := designIntent(msg)
	return emit([]string{"Assigning Tasks to Product Designers."},
		send(env, msg, RoleInteractionDesigner, bus.KindTask, "Wireframe: "+msg.Payload).WithIntent(intent),
		send(env, msg, RoleVisualDesigner, bus.KindTask, "High-Fi Mockup: "+msg.Payload).WithIntent(intent),
	)
}
