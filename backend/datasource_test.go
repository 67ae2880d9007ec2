package backend

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

type stringSource struct {
	io.Reader
}

func (stringSource) Close() error { return nil }

func collectInput(t *testing.T, d *Datasource, trace string, expected int) []InputData {
	t.Helper()
	ch := make(chan InputData, 64)
	go d.readSource(stringSource{strings.NewReader(trace)}, ModeStream, ch)
	out := make([]InputData, 0, expected)
	timeout := time.After(5 * time.Second)
	for len(out) < expected {
		select {
		case input := <-ch:
			out = append(out, input)
		case <-timeout:
			t.Fatalf("timed out waiting for input %d of %d", len(out)+1, expected)
		}
	}
	return out
}

func testDatasource(t *testing.T) *Datasource {
	t.Helper()
	d, err := NewDatasource(context.Background(), nil)
	if err != nil {
		t.Skipf("cannot create datasource: %v", err)
	}
	return d
}

func TestReadSourceParsesTrace(t *testing.T) {
	d := testDatasource(t)
	trace := strings.Join([]string{
		"timestamp, 1 (very negative), 5 (very positive)",
		"2024-05-01T00:00:00Z, 0.25, 0.5",
		"2024-05-01T00:00:30Z, , 0.75",
		"not-a-timestamp, 1.0, 1.0",
		"2024-05-01T00:01:00Z, 0.125, garbage",
		"",
	}, "\n")
	inputs := collectInput(t, d, trace, 5)
	if inputs[0].Kind != KindHeadings {
		t.Fatalf("expected headings first, got kind %d", inputs[0].Kind)
	}
	if len(inputs[0].Headings) != 2 || inputs[0].Headings[0] != "1 (very negative)" {
		t.Errorf("unexpected headings: %v", inputs[0].Headings)
	}
	samples := inputs[1:]
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).UnixNano()
	expect := []Sample{
		{TimestampNS: base, Series: inputs[0].HeadingSeries[0], Value: 0.25},
		{TimestampNS: base, Series: inputs[0].HeadingSeries[1], Value: 0.5},
		{TimestampNS: base + 30*time.Second.Nanoseconds(), Series: inputs[0].HeadingSeries[1], Value: 0.75},
		{TimestampNS: base + 60*time.Second.Nanoseconds(), Series: inputs[0].HeadingSeries[0], Value: 0.125},
	}
	for i, e := range expect {
		if samples[i].Kind != KindSample {
			t.Fatalf("sample %d has kind %d", i, samples[i].Kind)
		}
		if samples[i].Sample != e {
			t.Errorf("sample %d: got %+v, want %+v", i, samples[i].Sample, e)
		}
	}
}

func TestReadSourceBadHeader(t *testing.T) {
	d := testDatasource(t)
	inputs := collectInput(t, d, "timestamp\n", 1)
	if inputs[0].Kind != KindError {
		t.Fatalf("expected an error input, got kind %d", inputs[0].Kind)
	}
	if inputs[0].Err == nil {
		t.Error("error input should carry the cause")
	}
}

func TestSessionCharted(t *testing.T) {
	s := Session{}
	if s.Charted() {
		t.Error("empty session should not be charted")
	}
	s.Data = &Dataset{}
	s.Data.SetHeadings([]string{"a"}, []int{1})
	if s.Charted() {
		t.Error("session without samples should not be charted")
	}
	s.Data.Insert(Sample{TimestampNS: 1, Series: 1, Value: 2})
	if !s.Charted() {
		t.Error("session with samples should be charted")
	}
	s.Err = io.ErrUnexpectedEOF
	if s.Charted() {
		t.Error("errored session must never be charted")
	}
}
