package workflow

import (
	"strings"

	"github.com/dayuer/virtualco/internal/bus"
)

// Well-known addresses the procedures hand work to.
const (
	RoleCFO                 = "CFO"
	RoleVPPeople            = "VP People"
	RoleRecruiter           = "Recruiter"
	RoleProductManager      = "Product Manager"
	RoleDesignLead          = "Design Lead"
	RoleEMBackend           = "Engineering Manager (Backend)"
	RoleEMFrontend          = "Engineering Manager (Frontend)"
	RoleEMMobile            = "Engineering Manager (Mobile)"
	RoleDatabaseManager     = "Manager - Database Engineering"
	RoleBackendArchitect    = "Backend Architect"
	RoleFrontendArchitect   = "Frontend Architect"
	RoleBrandDesigner       = "Brand Designer"
	RoleMotionDesigner      = "Motion Designer"
	RoleInteractionDesigner = "Interaction Designer (IxD)"
	RoleVisualDesigner      = "Visual Designer (UI)"

	// Review stages address a whole category; the bus picks the member.
	CategoryDevOps   = "DevOps Engineer"
	CategorySecurity = "Security Engineer"
)

// WellKnownAddresses lists every address a procedure may route to by name.
var WellKnownAddresses = []string{
	RoleCFO, RoleVPPeople, RoleRecruiter, RoleProductManager, RoleDesignLead,
	RoleEMBackend, RoleEMFrontend, RoleEMMobile, RoleDatabaseManager,
	RoleBackendArchitect, RoleFrontendArchitect, RoleBrandDesigner,
	RoleMotionDesigner, RoleInteractionDesigner, RoleVisualDesigner,
	CategoryDevOps, CategorySecurity,
}

// MissingAddresses returns the well-known addresses dir cannot resolve.
// Messages sent to them will be dropped.
func MissingAddresses(dir Directory) []string {
	var missing []string
	for _, a := range WellKnownAddresses {
		if !dir.Has(a) {
			missing = append(missing, a)
		}
	}
	return missing
}

// delegateTarget picks which direct report receives a task.
// New features go to the matching architect when one reports here; other
// work goes to the report owning the domain. The first report is the fallback.
func delegateTarget(reports []string, intent bus.Intent) string {
	if len(reports) == 0 {
		return ""
	}
	if intent.Work == bus.WorkFeature {
		if r := architectAmong(reports, intent.Domain); r != "" {
			return r
		}
		return reports[0]
	}
	if r := domainOwner(reports, intent.Domain); r != "" {
		return r
	}
	return reports[0]
}

func architectAmong(reports []string, d bus.Domain) string {
	area := ""
	switch d {
	case bus.DomainBackend:
		area = "Backend"
	case bus.DomainFrontend, bus.DomainDesign:
		area = "Frontend"
	default:
		return ""
	}
	for _, r := range reports {
		if strings.Contains(r, "Architect") && strings.Contains(r, area) {
			return r
		}
	}
	return ""
}

func domainOwner(reports []string, d bus.Domain) string {
	var match func(string) bool
	switch d {
	case bus.DomainDatabase:
		match = func(r string) bool { return strings.Contains(r, "Database") }
	case bus.DomainBackend:
		match = func(r string) bool { return strings.Contains(r, "Backend") }
	case bus.DomainFrontend, bus.DomainDesign:
		match = func(r string) bool { return strings.Contains(r, "Frontend") || strings.Contains(r, "Design") }
	case bus.DomainMobile:
		match = func(r string) bool { return strings.Contains(r, "Mobile") }
	default:
		return ""
	}
	for _, r := range reports {
		if match(r) && !strings.Contains(r, "Architect") {
			return r
		}
	}
	return ""
}

// specOwner is the engineering manager who implements an architect's spec.
func specOwner(d bus.Domain) string {
	switch d {
	case bus.DomainBackend:
		return RoleEMBackend
	case bus.DomainMobile:
		return RoleEMMobile
	case bus.DomainDatabase:
		return RoleDatabaseManager
	default:
		return RoleEMFrontend
	}
}

// reviewArchitect signs off the final review level.
func reviewArchitect(d bus.Domain) string {
	switch d {
	case bus.DomainFrontend, bus.DomainDesign:
		return RoleFrontendArchitect
	default:
		return RoleBackendArchitect
	}
}

// nextPeer is the ring successor of role within its category, or "" when
// the role has no peers. For two-member groups this is a swap.
func nextPeer(dir Directory, role string) string {
	peers := dir.Peers(role)
	if len(peers) < 2 {
		return ""
	}
	for i, p := range peers {
		if p == role {
			return peers[(i+1)%len(peers)]
		}
	}
	return ""
}
