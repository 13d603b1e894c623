package core

import (
	"reflect"
	"testing"
)

func TestRegistry(t *testing.T) {
	saved := All()
	Clear()
	defer func() {
		Clear()
		for _, def := range saved {
			Register(def)
		}
	}()

	b := testDefinition()
	b.Name = "beta"
	a := testDefinition()
	a.Name = "alpha"
	Register(b)
	Register(a)

	if got := RuleSetCount(); got != 2 {
		t.Errorf("RuleSetCount() = %d, want 2", got)
	}
	if got := Names(); !reflect.DeepEqual(got, []string{"alpha", "beta"}) {
		t.Errorf("Names() = %v", got)
	}
	if all := All(); all[0].Name != "alpha" || all[1].Name != "beta" {
		t.Errorf("All() not sorted by name: %v, %v", all[0].Name, all[1].Name)
	}
	if _, ok := Get("alpha"); !ok {
		t.Error("Get(alpha) not found")
	}
	if _, ok := Get("gamma"); ok {
		t.Error("Get(gamma) should not be found")
	}

	t.Run("duplicate panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("registering a duplicate name should panic")
			}
		}()
		Register(a)
	})

	t.Run("invalid rules panic", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("registering invalid rules should panic")
			}
		}()
		Register(RuleSetDefinition{Name: "broken"})
	})

	if _, ok := Get("broken"); ok {
		t.Error("invalid rule set should not be registered")
	}
}
