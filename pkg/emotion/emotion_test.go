package emotion

import (
	"encoding/json"
	"errors"
	"testing"
)

func constant(dim, code int) ClassifierFunc {
	return ClassifierFunc{Dim: dim, Func: func([]float64) (int, error) { return code, nil }}
}

// withClasses wraps a classifier with an explicit class set.
type withClasses struct {
	ClassifierFunc
	classes []int
}

func (w withClasses) Classes() []int { return w.classes }

func TestLabelString(t *testing.T) {
	tests := []struct {
		l    Label
		want string
	}{
		{NonNegative, "non-negative"},
		{Negative, "negative"},
		{Label(7), "Label(7)"},
	}
	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("Label(%d).String() = %q, want %q", int(tt.l), got, tt.want)
		}
	}
}

func TestParseLabel(t *testing.T) {
	for _, l := range []Label{NonNegative, Negative} {
		got, err := ParseLabel(l.String())
		if err != nil || got != l {
			t.Errorf("ParseLabel(%q) = %v, %v", l.String(), got, err)
		}
	}
	if _, err := ParseLabel("happy"); err == nil {
		t.Error("ParseLabel(happy) should fail")
	}
}

func TestLabelJSON(t *testing.T) {
	b, err := json.Marshal(Prediction{Code: 1, Label: Negative})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"code":1,"label":"negative"}` {
		t.Errorf("json = %s", b)
	}
	var p Prediction
	if err := json.Unmarshal(b, &p); err != nil {
		t.Fatal(err)
	}
	if p.Label != Negative {
		t.Errorf("Label = %v, want negative", p.Label)
	}
	if _, err := json.Marshal(Label(9)); err == nil {
		t.Error("marshal of invalid label should fail")
	}
}

func TestTableCheck(t *testing.T) {
	table := DefaultTable()
	if err := table.Check([]int{1, 0}); err != nil {
		t.Fatalf("Check(default classes) = %v", err)
	}
	err := table.Check([]int{3, 0, 2})
	var ue *UnmappedLabelError
	if !errors.As(err, &ue) || ue.Code != 2 {
		t.Fatalf("Check = %v, want UnmappedLabelError{Code: 2}", err)
	}
	if !errors.Is(err, ErrUnmappedLabel) {
		t.Fatal("UnmappedLabelError should match ErrUnmappedLabel")
	}
	if got := table.Codes(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Codes() = %v, want [0 1]", got)
	}
}

func TestDefaultTableIsACopy(t *testing.T) {
	a := DefaultTable()
	a[5] = Negative
	if _, ok := DefaultTable()[5]; ok {
		t.Fatal("DefaultTable must return a fresh table")
	}
}

func TestCompress(t *testing.T) {
	tests := map[string]int{
		"01": 0, "02": 0, "03": 0, "08": 0,
		"04": 1, "05": 1, "06": 1, "07": 1,
	}
	for code, want := range tests {
		got, err := Compress(code)
		if err != nil || got != want {
			t.Errorf("Compress(%q) = %d, %v; want %d", code, got, err, want)
		}
	}
	if _, err := Compress("09"); !errors.Is(err, ErrUnknownEmotion) {
		t.Errorf("Compress(09) error = %v, want ErrUnknownEmotion", err)
	}
	for _, c := range Compression {
		if c != ObservedClasses[0] && c != ObservedClasses[1] {
			t.Errorf("compressed class %d not observed", c)
		}
	}
}

func TestParseClipName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"03-01-05-01-02-01-12.wav", "05", false},
		{"/data/Actor_01/03-01-08-02-01-01-01.wav", "08", false},
		{"03-01-09-01-02-01-12.wav", "", true},
		{"happy1.wav", "", true},
		{"03-01-05.wav", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClipName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClipName error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseClipName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdapterNegative(t *testing.T) {
	a, err := NewAdapter(constant(180, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := a.Classify(make([]float64, 180))
	if err != nil {
		t.Fatal(err)
	}
	if p.Code != 1 || p.Label != Negative {
		t.Errorf("Classify = %+v, want code 1 negative", p)
	}
}

func TestAdapterShape(t *testing.T) {
	a, err := NewAdapter(constant(180, 0), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Classify(make([]float64, 52))
	var se *ShapeError
	if !errors.As(err, &se) || se.Want != 180 || se.Got != 52 {
		t.Fatalf("Classify error = %v, want ShapeError{180, 52}", err)
	}
	if !errors.Is(err, ErrShape) {
		t.Fatal("ShapeError should match ErrShape")
	}
}

func TestAdapterUnmappedAtClassify(t *testing.T) {
	a, err := NewAdapter(constant(3, 4), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Classify([]float64{1, 2, 3}); !errors.Is(err, ErrUnmappedLabel) {
		t.Fatalf("Classify error = %v, want ErrUnmappedLabel", err)
	}
}

func TestAdapterStartupCheck(t *testing.T) {
	clf := withClasses{ClassifierFunc: constant(3, 0), classes: []int{0, 1, 2}}
	if _, err := NewAdapter(clf, nil); !errors.Is(err, ErrUnmappedLabel) {
		t.Fatalf("NewAdapter error = %v, want ErrUnmappedLabel", err)
	}
	table := Table{0: NonNegative, 1: Negative, 2: Negative}
	if _, err := NewAdapter(clf, table); err != nil {
		t.Fatalf("NewAdapter with full table: %v", err)
	}
}

func TestAdapterPredictError(t *testing.T) {
	boom := errors.New("boom")
	clf := ClassifierFunc{Dim: 1, Func: func([]float64) (int, error) { return 0, boom }}
	a, err := NewAdapter(clf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Classify([]float64{0}); !errors.Is(err, boom) {
		t.Fatalf("Classify error = %v, want wrapped boom", err)
	}
	if _, err := NewAdapter(nil, nil); err == nil {
		t.Fatal("NewAdapter(nil) should fail")
	}
}

func TestAdapterSingleRowBatch(t *testing.T) {
	var rows int
	clf := ClassifierFunc{Dim: 2, Func: func(row []float64) (int, error) {
		rows++
		if row[0] > row[1] {
			return 1, nil
		}
		return 0, nil
	}}
	a, _ := NewAdapter(clf, nil)
	p, err := a.Classify([]float64{2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if rows != 1 || p.Label != Negative {
		t.Errorf("rows = %d, label = %v", rows, p.Label)
	}
}
