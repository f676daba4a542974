package lifecycle

import (
	"testing"

	"github.com/matzehuels/overlay/pkg/visibility"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		ctrl   Controller
		states []visibility.State
		want   Decision
	}{
		{"lazy before first show", Controller{}, []visibility.State{visibility.Hidden}, Decision{}},
		{"pending show stays lazy", Controller{}, []visibility.State{visibility.PendingShow}, Decision{}},
		{"force render mounts at creation", Controller{ForceRender: true}, []visibility.State{visibility.Hidden}, Decision{Portal: true, Content: true, Hidden: true}},
		{"visible", Controller{}, []visibility.State{visibility.Visible}, Decision{Portal: true, Content: true}},
		{"pending hide still visible", Controller{}, []visibility.State{visibility.PendingHide}, Decision{Portal: true, Content: true}},
		{"hide keeps content", Controller{}, []visibility.State{visibility.Visible, visibility.Hidden}, Decision{Portal: true, Content: true, Hidden: true}},
		{"destroy on hide", Controller{DestroyOnHide: true}, []visibility.State{visibility.Visible, visibility.Hidden}, Decision{Portal: true}},
		{"auto destroy", Controller{AutoDestroy: true}, []visibility.State{visibility.Visible, visibility.Hidden}, Decision{}},
		{"force render wins over destroy", Controller{ForceRender: true, DestroyOnHide: true, AutoDestroy: true}, []visibility.State{visibility.Visible, visibility.Hidden}, Decision{Portal: true, Content: true, Hidden: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.ctrl
			var got Decision
			for _, s := range tt.states {
				got = c.Decide(s)
			}
			if got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEverShownLatches(t *testing.T) {
	var c Controller
	c.Decide(visibility.Hidden)
	if c.EverShown() {
		t.Fatal("not shown yet")
	}
	c.Decide(visibility.Visible)
	c.Decide(visibility.Hidden)
	if !c.EverShown() {
		t.Error("EverShown should latch")
	}
}
