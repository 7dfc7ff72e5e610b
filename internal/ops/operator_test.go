// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ops

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/mlnoga/ppmbench/internal/median"
	"github.com/mlnoga/ppmbench/internal/ppm"
)

func newTestImage(t *testing.T) *ppm.Image {
	img, err := ppm.NewImage(8, 6)
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Data {
		img.Data[i] = ppm.Pixel{R: uint8(i * 5), G: uint8(i * 3), B: uint8(255 - i)}
	}
	return img
}

func applyOne(t *testing.T, op Operator, img *ppm.Image, c *Context) (*ppm.Image, error) {
	t.Helper()
	outs, err := op.MakePromises([]Promise{PromiseOf(img)}, c)
	if err != nil {
		return nil, err
	}
	if len(outs) != 1 {
		t.Fatalf("%s returned %d promises; want 1", op.GetType(), len(outs))
	}
	return outs[0]()
}

func TestSequenceJSONRoundTrip(t *testing.T) {
	seq := NewOpSequence(
		NewOpNoise(0.1, 3),
		NewOpMedian(2, median.Histogram),
		NewOpGray(true),
		NewOpStats(false),
	)
	bs, err := json.Marshal(seq)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bs), `"strategy":"histogram"`) {
		t.Errorf("json=%s; want strategy by name", bs)
	}

	var back OpSequence
	if err := json.Unmarshal(bs, &back); err != nil {
		t.Fatalf("Unmarshal %s: %v", bs, err)
	}
	if len(back.Steps) != 4 {
		t.Fatalf("len(Steps)=%d; want 4", len(back.Steps))
	}
	wantTypes := []string{"noise", "median", "gray", "stats"}
	for i, step := range back.Steps {
		if step.GetType() != wantTypes[i] {
			t.Errorf("step %d type=%s; want %s", i, step.GetType(), wantTypes[i])
		}
	}
	m, ok := back.Steps[1].(*OpMedian)
	if !ok {
		t.Fatalf("step 1 is %T; want *OpMedian", back.Steps[1])
	}
	if m.WindowSize != 2 || m.Strategy != median.Histogram || !m.Active {
		t.Errorf("median step=%+v; want window 2, histogram, active", m)
	}

	// decoded operators must be callable
	c := NewContext(&bytes.Buffer{}, 2)
	in := newTestImage(t)
	want, err := applyOne(t, seq, in, c)
	if err != nil {
		t.Fatal(err)
	}
	got, err := applyOne(t, &back, in, c)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("decoded sequence produced a different image")
	}
}

func TestUnknownOperatorType(t *testing.T) {
	var seq OpSequence
	err := json.Unmarshal([]byte(`{"type":"seq","active":true,"steps":[{"type":"sharpen"}]}`), &seq)
	if !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("err=%v; want ErrConfiguration", err)
	}
}

func TestMedianOperatorMatchesKernel(t *testing.T) {
	in := newTestImage(t)
	c := NewContext(&bytes.Buffer{}, 3)
	got, err := applyOne(t, NewOpMedian(1, median.Select), in, c)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := median.FilterWith(in, 1, 1, median.Select)
	if !got.Equal(want) {
		t.Errorf("operator result differs from median.FilterWith")
	}
}

func TestInactivePassesThrough(t *testing.T) {
	in := newTestImage(t)
	c := NewContext(&bytes.Buffer{}, 1)
	for _, op := range []Operator{NewOpGray(false), NewOpNoise(0, 1), NewOpMedian(0, median.Auto), NewOpSave("")} {
		out, err := applyOne(t, op, in, c)
		if err != nil {
			t.Fatalf("%s: %v", op.GetType(), err)
		}
		if out != in {
			t.Errorf("inactive %s did not pass its input through", op.GetType())
		}
	}
}

func TestOperatorErrorsPropagate(t *testing.T) {
	c := NewContext(&bytes.Buffer{}, 1)
	op := NewOpMedian(median.MaxWindowSize+1, median.Auto)
	_, err := applyOne(t, op, newTestImage(t), c)
	if !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("err=%v; want ErrConfiguration", err)
	}
}

func TestMaterializeAll(t *testing.T) {
	img := newTestImage(t)
	fail := func() (*ppm.Image, error) { return nil, ppm.ErrIO }
	outs, err := MaterializeAll([]Promise{PromiseOf(img), fail, PromiseOf(img), fail}, 2, false)
	if !errors.Is(err, ppm.ErrIO) {
		t.Errorf("err=%v; want ErrIO", err)
	}
	if len(outs) != 2 {
		t.Errorf("len(outs)=%d; want 2", len(outs))
	}

	outs, err = MaterializeAll([]Promise{PromiseOf(img)}, 1, true)
	if err != nil || len(outs) != 0 {
		t.Errorf("forget: outs=%d err=%v; want 0, nil", len(outs), err)
	}
}

func TestLoadSave(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	in := newTestImage(t)
	in.ID = 7
	c := NewContext(&bytes.Buffer{}, 1)
	if _, err := applyOne(t, NewOpSave("out%d.ppm"), in, c); err != nil {
		t.Fatal(err)
	}
	if _, err := applyOne(t, NewOpSave("out.pgm"), in, c); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat("out.pgm"); err != nil {
		t.Errorf("gray output missing: %v", err)
	}

	outs, err := NewOpLoadMany([]string{"out*.ppm"}).MakePromises(nil, c)
	if err != nil {
		t.Fatal(err)
	}
	imgs, err := MaterializeAll(outs, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(imgs) != 1 || !imgs[0].Equal(in) {
		t.Errorf("loaded %d images; want the saved one", len(imgs))
	}

	if _, err := applyOne(t, NewOpSave("/tmp/abs.ppm"), in, c); !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("absolute path err=%v; want ErrConfiguration", err)
	}
	if _, err := applyOne(t, NewOpSave("out.jpg"), in, c); !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("jpg suffix err=%v; want ErrConfiguration", err)
	}
	if _, err := NewOpLoad(0, "../x.ppm").MakePromises(nil, c); !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("parent path err=%v; want ErrConfiguration", err)
	}
}

func TestForEachJSON(t *testing.T) {
	op := NewOpForEach(NewOpGray(true))
	bs, err := json.Marshal(op)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalOperator(bs)
	if err != nil {
		t.Fatalf("UnmarshalOperator %s: %v", bs, err)
	}
	fe, ok := back.(*OpForEach)
	if !ok || fe.Operation == nil || fe.Operation.GetType() != "gray" {
		t.Fatalf("decoded %s as %+v; want forEach of gray", bs, back)
	}

	in := newTestImage(t)
	c := NewContext(&bytes.Buffer{}, 1)
	outs, err := fe.MakePromises([]Promise{PromiseOf(in), PromiseOf(in)}, c)
	if err != nil {
		t.Fatal(err)
	}
	imgs, err := MaterializeAll(outs, 2, false)
	if err != nil || len(imgs) != 2 {
		t.Fatalf("imgs=%d err=%v; want 2, nil", len(imgs), err)
	}
	if p := imgs[0].Data[3]; p.R != p.G || p.G != p.B {
		t.Errorf("pixel=%v; want gray", p)
	}
}

func TestNewContextDefaults(t *testing.T) {
	c := NewContext(nil, 0)
	if c.MaxThreads < 1 {
		t.Errorf("MaxThreads=%d; want at least 1", c.MaxThreads)
	}
	if c.MemoryMB < 0 {
		t.Errorf("MemoryMB=%d; want non-negative", c.MemoryMB)
	}
}
