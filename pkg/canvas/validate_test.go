package canvas

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/groupfit/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []Node
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:  "clean",
			nodes: sampleNodes(),
		},
		{
			name:  "empty collection",
			nodes: nil,
		},
		{
			name:     "duplicate id",
			nodes:    []Node{{ID: "a"}, {ID: "a"}},
			wantCode: errors.ErrCodeInvalidInput,
			wantMsg:  `duplicate id "a"`,
		},
		{
			name:     "empty id",
			nodes:    []Node{{ID: ""}},
			wantCode: errors.ErrCodeInvalidInput,
			wantMsg:  "empty id",
		},
		{
			name:     "NaN position",
			nodes:    []Node{{ID: "a", Position: Position{X: math.NaN()}}},
			wantCode: errors.ErrCodeInvalidGeometry,
			wantMsg:  "non-finite position",
		},
		{
			name:     "negative width",
			nodes:    []Node{{ID: "a", Width: Float(-1)}},
			wantCode: errors.ErrCodeInvalidGeometry,
			wantMsg:  "invalid width",
		},
		{
			name:     "infinite style height",
			nodes:    []Node{{ID: "g", Type: TypeGroup, Style: Style{"height": math.Inf(1)}}},
			wantCode: errors.ErrCodeInvalidGeometry,
			wantMsg:  "invalid style height",
		},
		{
			name:     "self parent",
			nodes:    []Node{{ID: "a", ParentID: "a"}},
			wantCode: errors.ErrCodeInvalidGeometry,
			wantMsg:  "own parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.nodes)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidateListsEveryProblem(t *testing.T) {
	err := Validate([]Node{
		{ID: "a", Width: Float(-1)},
		{ID: "b", Position: Position{Y: math.Inf(-1)}},
	})
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	if !strings.Contains(err.Error(), "2 problem(s)") {
		t.Errorf("error = %q, want both problems counted", err)
	}
}
