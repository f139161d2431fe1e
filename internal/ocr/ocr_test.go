package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/prescription-extractor/internal/common"
)

// fakeRunner answers the text call and the TSV call by inspecting args.
type fakeRunner struct {
	text    string
	textErr error
	tsv     string
	tsvErr  error
	calls   int
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	f.calls++
	if len(args) > 0 && args[len(args)-1] == "tsv" {
		return []byte(f.tsv), nil, f.tsvErr
	}
	return []byte(f.text), nil, f.textErr
}

func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rx.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0o644))
	return path
}

func tsvWithConfs(confs ...int) string {
	var b strings.Builder
	b.WriteString("level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n")
	for i, c := range confs {
		fmt.Fprintf(&b, "5\t1\t1\t1\t1\t%d\t10\t10\t50\t20\t%d\tword%d\n", i+1, c, i)
	}
	return b.String()
}

func TestExtractBlendsConfidences(t *testing.T) {
	path := writeTempImage(t)
	e := NewExtractor(Config{}, nil)
	e.runner = &fakeRunner{
		text: "Amoxicillin 500mg\nngày uống 2 lần\n15/03/2024\nline4\nline5",
		tsv:  tsvWithConfs(90, 90, 90),
	}

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalLines)
	assert.Contains(t, res.Text, "Amoxicillin")
	// heuristic hits everything: 0.2 + 0.2 + 0.3 + 0.2 + 0.1 = 1.0
	// blend: 0.7*0.9 + 0.3*1.0
	assert.InDelta(t, 0.93, float64(res.Confidence), 0.001)
}

func TestExtractDegradesOnOCRFailure(t *testing.T) {
	path := writeTempImage(t)
	e := NewExtractor(Config{}, nil)
	e.runner = &fakeRunner{textErr: errors.New("read_params_file: parameter not found")}

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err, "OCR failure on a readable file must not error")

	assert.Empty(t, res.Text)
	assert.Zero(t, res.Confidence)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = &fakeRunner{}

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, common.ErrImageNotFound)
}

func TestExtractRejectsUnsupportedExtension(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	_, err := e.Extract(context.Background(), "/tmp/report.pdf")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExtractFallsBackToHeuristicWithoutTSV(t *testing.T) {
	path := writeTempImage(t)
	e := NewExtractor(Config{}, nil)
	e.runner = &fakeRunner{
		text:   "some unremarkable text",
		tsvErr: errors.New("tsv unsupported"),
	}

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	// non-empty text with no prescription artifacts scores the floor value
	assert.InDelta(t, 0.2, float64(res.Confidence), 0.001)
}

func TestTSVConfidenceSkipsNonWordRows(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
		"5\t1\t1\t1\t1\t1\t10\t10\t50\t20\t80\thello\n" +
		"5\t1\t1\t1\t1\t2\t70\t10\t50\t20\t60\tworld\n"
	e := NewExtractor(Config{}, nil)
	e.runner = &fakeRunner{tsv: tsv}

	conf, _, err := e.tesseractTSVConfidence(context.Background(), "x.jpg")
	require.NoError(t, err)
	assert.InDelta(t, 0.70, float64(conf), 0.001)
}
