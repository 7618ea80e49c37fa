package amount

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "zero", input: "0", want: "0"},
		{name: "small", input: "42", want: "42"},
		{name: "max", input: "79228162514264337593543950335", want: "79228162514264337593543950335"},
		{name: "above max", input: "79228162514264337593543950336", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "malformed", input: "12x", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddSub(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		op      string
		want    string
		wantErr error
	}{
		{name: "simple add", a: "10", b: "32", op: "add", want: "42"},
		{name: "add to max", a: "79228162514264337593543950334", b: "1", op: "add", want: "79228162514264337593543950335"},
		{name: "add overflow", a: "79228162514264337593543950335", b: "1", op: "add", wantErr: ErrOverflow},
		{name: "simple sub", a: "42", b: "10", op: "sub", want: "32"},
		{name: "sub to zero", a: "7", b: "7", op: "sub", want: "0"},
		{name: "sub underflow", a: "7", b: "8", op: "sub", wantErr: ErrUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			var got Amount
			var err error
			if tt.op == "add" {
				got, err = a.Add(b)
			} else {
				got, err = a.Sub(b)
			}
			if err != tt.wantErr {
				t.Fatalf("%s error = %v, want %v", tt.op, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("%s = %s, want %s", tt.op, got, tt.want)
			}
		})
	}
}

func TestOperandsUnchanged(t *testing.T) {
	a := MustParse("100")
	b := MustParse("30")
	if _, err := a.Add(b); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Sub(b); err != nil {
		t.Fatal(err)
	}
	a.MulFrac(FracDenominator / 2)
	if a.String() != "100" || b.String() != "30" {
		t.Errorf("operands mutated: a=%s b=%s", a, b)
	}
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		num, den uint64
		want     string
		wantErr  bool
	}{
		{name: "identity", a: "1000", num: 1, den: 1, want: "1000"},
		{name: "floor", a: "10", num: 1, den: 3, want: "3"},
		{name: "scale up", a: "7", num: 250000, den: 1, want: "1750000"},
		{name: "intermediate over bound", a: "79228162514264337593543950335", num: 3, den: 3, want: "79228162514264337593543950335"},
		{name: "overflow", a: "79228162514264337593543950335", num: 2, den: 1, wantErr: true},
		{name: "zero den", a: "1", num: 1, den: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MustParse(tt.a).MulDiv(tt.num, tt.den)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MulDiv error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("MulDiv = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMulFrac(t *testing.T) {
	tests := []struct {
		name string
		a    string
		frac uint64
		want string
	}{
		{name: "zero frac", a: "1000", frac: 0, want: "0"},
		{name: "full frac", a: "1000", frac: FracDenominator, want: "1000"},
		{name: "half", a: "1000", frac: FracDenominator / 2, want: "500"},
		{name: "2.5 percent", a: "1000", frac: 25_000_000_000_000_000, want: "25"},
		{name: "floor rounding", a: "3", frac: FracDenominator / 2, want: "1"},
		{name: "clamped above one", a: "1000", frac: FracDenominator + 1, want: "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MustParse(tt.a).MulFrac(tt.frac); got.String() != tt.want {
				t.Errorf("MulFrac = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDivMod(t *testing.T) {
	a := MustParse("10007")
	if got := a.Div(100); got.String() != "100" {
		t.Errorf("Div = %s, want 100", got)
	}
	if got := a.Mod(100); got != 7 {
		t.Errorf("Mod = %d, want 7", got)
	}
	if got := a.Div(0); !got.IsZero() {
		t.Errorf("Div by zero = %s, want 0", got)
	}
}

func TestMinCmp(t *testing.T) {
	a, b := MustParse("5"), MustParse("9")
	if got := a.Min(b); got.String() != "5" {
		t.Errorf("Min = %s, want 5", got)
	}
	if got := b.Min(a); got.String() != "5" {
		t.Errorf("Min = %s, want 5", got)
	}
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Error("Cmp ordering wrong")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		V Amount `json:"v"`
	}
	in := wrapper{V: MustParse("79228162514264337593543950335")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"v":"79228162514264337593543950335"}` {
		t.Errorf("marshal = %s", data)
	}
	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.V.Cmp(in.V) != 0 {
		t.Errorf("round trip = %s, want %s", out.V, in.V)
	}
	if err := json.Unmarshal([]byte(`{"v":"-3"}`), &out); err == nil {
		t.Error("expected error for negative value")
	}
}
