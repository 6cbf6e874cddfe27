package ptr

import "testing"

func TestTo(t *testing.T) {
	i := 42
	p := To(i)
	if p == nil {
		t.Fatal("Expected non-nil pointer")
	}
	if *p != i {
		t.Errorf("Expected %d, got %d", i, *p)
	}
	if p == &i {
		t.Error("Expected different address")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *int
		want bool
	}{
		{"both nil", nil, nil, true},
		{"left nil", nil, Int(0), false},
		{"right nil", Int(0), nil, false},
		{"same value", Int(1500), Int(1500), true},
		{"different value", Int(1500), Int(1550), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDerefAndClone(t *testing.T) {
	if got := Deref[int](nil, -1); got != -1 {
		t.Errorf("Deref(nil) = %d", got)
	}
	if got := Deref(Int(7), -1); got != 7 {
		t.Errorf("Deref(7) = %d", got)
	}

	src := Int(3)
	c := Clone(src)
	*src = 4
	if *c != 3 {
		t.Errorf("Clone shares storage")
	}
	if Clone[int](nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
