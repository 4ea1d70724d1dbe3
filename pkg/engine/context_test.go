package engine

import (
	"testing"
	"time"
)

func TestNewContextComputedValues(t *testing.T) {
	ctx := NewContext(map[string]any{"name": "user auth service"})

	if got := ctx.Computed["projectNameKebab"]; got != "user-auth-service" {
		t.Errorf("projectNameKebab = %v", got)
	}
	if got := ctx.Computed["projectNamePascal"]; got != "UserAuthService" {
		t.Errorf("projectNamePascal = %v", got)
	}
	if got := ctx.Computed["projectNameSnake"]; got != "user_auth_service" {
		t.Errorf("projectNameSnake = %v", got)
	}

	stamp, ok := ctx.Computed["timestamp"].(string)
	if !ok {
		t.Fatalf("timestamp is %T, want string", ctx.Computed["timestamp"])
	}
	if _, err := time.Parse(time.RFC3339, stamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", stamp, err)
	}
}

func TestNewContextWithoutName(t *testing.T) {
	ctx := NewContext(map[string]any{"other": "x"})
	if _, ok := ctx.Computed["projectName"]; ok {
		t.Error("projectName derived without a name variable")
	}
}

func TestFlattenPrecedence(t *testing.T) {
	ctx := &Context{
		Variables:   map[string]any{"key": "variable"},
		Computed:    map[string]any{"key": "computed", "date": "2024-01-01"},
		Environment: map[string]any{"key": "environment", "platform": "linux"},
	}

	flat := ctx.flatten()
	if flat["key"] != "variable" {
		t.Errorf("variables should win, got %v", flat["key"])
	}
	if flat["date"] != "2024-01-01" {
		t.Errorf("computed value lost: %v", flat["date"])
	}
	if flat["platform"] != "linux" {
		t.Errorf("environment value lost: %v", flat["platform"])
	}
}

func TestFlattenNilContext(t *testing.T) {
	var ctx *Context
	if got := ctx.flatten(); len(got) != 0 {
		t.Errorf("nil context flattens to %v", got)
	}
}
