package player

import "testing"

func TestPlayerValidate(t *testing.T) {
	valid := Player{ID: "pl-1", Name: "Saka", Position: PositionMidfielder, Price: 90, Available: true}

	tests := []struct {
		name    string
		mutate  func(*Player)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Player) {}},
		{name: "missing id", mutate: func(p *Player) { p.ID = "" }, wantErr: true},
		{name: "missing name", mutate: func(p *Player) { p.Name = "" }, wantErr: true},
		{name: "unknown position", mutate: func(p *Player) { p.Position = "WB" }, wantErr: true},
		{name: "negative price", mutate: func(p *Player) { p.Price = -1 }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
