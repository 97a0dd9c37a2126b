package accounting

import (
	"errors"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		current State
		change  Change
		want    State
		wantErr bool
	}{
		{
			name:   "create with no flags",
			change: Change{},
			want:   State{},
		},
		{
			name:   "create requiring accounting",
			change: Change{HasAccounting: boolPtr(true)},
			want:   State{HasAccounting: true},
		},
		{
			name:   "create already done",
			change: Change{HasAccounting: boolPtr(true), AccountingDone: boolPtr(true)},
			want:   State{HasAccounting: true, AccountingDone: true},
		},
		{
			name:    "create done without accounting rejected",
			change:  Change{AccountingDone: boolPtr(true)},
			wantErr: true,
		},
		{
			name:    "create done with explicit false accounting rejected",
			change:  Change{HasAccounting: boolPtr(false), AccountingDone: boolPtr(true)},
			wantErr: true,
		},
		{
			name:    "mark done on feature without accounting rejected",
			current: State{},
			change:  Change{AccountingDone: boolPtr(true)},
			wantErr: true,
		},
		{
			name:    "mark done on feature with accounting",
			current: State{HasAccounting: true},
			change:  Change{AccountingDone: boolPtr(true)},
			want:    State{HasAccounting: true, AccountingDone: true},
		},
		{
			name:    "turning accounting off resets done",
			current: State{HasAccounting: true, AccountingDone: true},
			change:  Change{HasAccounting: boolPtr(false)},
			want:    State{},
		},
		{
			name:    "turning accounting off wins over concurrent done=true",
			current: State{HasAccounting: true},
			change:  Change{HasAccounting: boolPtr(false), AccountingDone: boolPtr(true)},
			wantErr: true,
		},
		{
			name:    "turning accounting off with explicit done=false",
			current: State{HasAccounting: true, AccountingDone: true},
			change:  Change{HasAccounting: boolPtr(false), AccountingDone: boolPtr(false)},
			want:    State{},
		},
		{
			name:    "absent fields keep stored values",
			current: State{HasAccounting: true, AccountingDone: true},
			change:  Change{},
			want:    State{HasAccounting: true, AccountingDone: true},
		},
		{
			name:    "enable accounting keeps done false",
			current: State{},
			change:  Change{HasAccounting: boolPtr(true)},
			want:    State{HasAccounting: true},
		},
		{
			name:    "explicit done=false on done feature",
			current: State{HasAccounting: true, AccountingDone: true},
			change:  Change{AccountingDone: boolPtr(false)},
			want:    State{HasAccounting: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.current, tt.change)
			if tt.wantErr {
				if !errors.Is(err, ErrDoneWithoutAccounting) {
					t.Fatalf("error = %v, want ErrDoneWithoutAccounting", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("state = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveNeverProducesInvalidState(t *testing.T) {
	// Exhaustive over all stored states and all change combinations.
	ptrs := []*bool{nil, boolPtr(false), boolPtr(true)}
	for _, has := range []bool{false, true} {
		for _, done := range []bool{false, true} {
			current := State{HasAccounting: has, AccountingDone: done}
			for _, ch := range ptrs {
				for _, cd := range ptrs {
					got, err := Resolve(current, Change{HasAccounting: ch, AccountingDone: cd})
					if err != nil {
						continue
					}
					if got.AccountingDone && !got.HasAccounting {
						t.Errorf("Resolve(%+v, has=%v done=%v) produced invalid state %+v",
							current, ch, cd, got)
					}
				}
			}
		}
	}
}
