package models

import "testing"

func TestParseUserRole(t *testing.T) {
	if role, err := ParseUserRole("admin"); err != nil || role != RoleAdmin {
		t.Fatalf("ParseUserRole(admin) = (%q, %v)", role, err)
	}
	if _, err := ParseUserRole("superuser"); err == nil {
		t.Fatal("unknown role accepted")
	}
	if _, err := ParseUserRole(""); err == nil {
		t.Fatal("empty role accepted")
	}
}

func TestParseSubscriptionPlan(t *testing.T) {
	for _, plan := range []string{"free", "standard", "pro"} {
		if _, err := ParseSubscriptionPlan(plan); err != nil {
			t.Fatalf("ParseSubscriptionPlan(%q): %v", plan, err)
		}
	}
	if _, err := ParseSubscriptionPlan("enterprise"); err == nil {
		t.Fatal("unknown plan accepted")
	}
}

func TestParseProjectType(t *testing.T) {
	for _, typ := range []string{"web", "mobile", "agent", "integration"} {
		if _, err := ParseProjectType(typ); err != nil {
			t.Fatalf("ParseProjectType(%q): %v", typ, err)
		}
	}
	if _, err := ParseProjectType("desktop"); err == nil {
		t.Fatal("unknown type accepted")
	}
}

func TestParseProjectStatus(t *testing.T) {
	for _, status := range []string{"draft", "building", "deployed", "failed"} {
		if _, err := ParseProjectStatus(status); err != nil {
			t.Fatalf("ParseProjectStatus(%q): %v", status, err)
		}
	}
	if _, err := ParseProjectStatus("launched"); err == nil {
		t.Fatal("unknown status accepted")
	}
}

func TestDefaultConversationSettings(t *testing.T) {
	settings := DefaultConversationSettings()
	if settings.AgentMode != "e1" {
		t.Fatalf("agent mode = %q", settings.AgentMode)
	}
	if settings.Model != "claude-4.5-sonnet" {
		t.Fatalf("model = %q", settings.Model)
	}
	if settings.MaxTokens != 4096 {
		t.Fatalf("max tokens = %d", settings.MaxTokens)
	}
	if settings.MCPTools == nil {
		t.Fatal("mcp tools should be an empty slice, not nil")
	}
}
