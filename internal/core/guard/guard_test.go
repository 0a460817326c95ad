package guard

import (
	"testing"

	"github.com/marketingcrm/portal/internal/core/domain"
)

func TestEvaluate_AllowsAnySessionOnProtectedRoute(t *testing.T) {
	for _, s := range []*domain.Session{
		{Email: "a@b.com", Role: domain.RoleUser},
		{Email: "root@b.com", Role: domain.RoleAdmin},
	} {
		out := Evaluate(s, Route{RequiresAuth: true})
		if out.Decision != Allow {
			t.Fatalf("expected allow for %s, got %s", s.Role, out.Decision)
		}
		if out.Redirect != "" {
			t.Fatalf("unexpected redirect %q", out.Redirect)
		}
	}
}

func TestEvaluate_DeniesAnonymous(t *testing.T) {
	out := Evaluate(nil, Route{RequiresAuth: true, ShowNav: true})
	if out.Decision != Deny {
		t.Fatalf("expected deny, got %s", out.Decision)
	}
	if out.Redirect != domain.LandingRoute {
		t.Fatalf("expected redirect to %s, got %q", domain.LandingRoute, out.Redirect)
	}
	if out.Nav != nil {
		t.Fatalf("denied outcome must not carry navigation")
	}
}

func TestEvaluate_PublicRoute(t *testing.T) {
	if out := Evaluate(nil, Route{}); out.Decision != Allow {
		t.Fatalf("public route must allow anonymous, got %s", out.Decision)
	}
}

func TestEvaluate_Navigation(t *testing.T) {
	admin := Evaluate(&domain.Session{Email: "x", Role: domain.RoleAdmin}, Route{RequiresAuth: true, ShowNav: true})
	if len(admin.Nav) != 2 || admin.Nav[1].Href != domain.OrdersRoute {
		t.Fatalf("unexpected admin nav: %+v", admin.Nav)
	}

	user := Evaluate(&domain.Session{Email: "x", Role: domain.RoleUser}, Route{RequiresAuth: true, ShowNav: true})
	if len(user.Nav) != 4 {
		t.Fatalf("unexpected user nav: %+v", user.Nav)
	}

	bare := Evaluate(&domain.Session{Email: "x", Role: domain.RoleUser}, Route{RequiresAuth: true})
	if bare.Nav != nil {
		t.Fatalf("nav requested off but got %+v", bare.Nav)
	}
}

func TestNavigation_ReturnsCopy(t *testing.T) {
	nav := Navigation(domain.RoleUser)
	nav[0].Label = "changed"
	if Navigation(domain.RoleUser)[0].Label == "changed" {
		t.Fatalf("Navigation must not expose shared state")
	}
}
