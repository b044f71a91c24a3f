package mirror_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
	"github.com/stretchr/testify/require"
)

const sampleLog = `2024-01-01 10:00:00 INFO starting traceability export
2024-01-01 10:00:01 INFO {"branchPath":"MAIN/A","commitComment":"edit","changes":{"1":{"concept":{"id":"10"}}}}

2024-01-01 10:00:02 INFO {"branchPath":"MAIN/A/B","commitComment":"alice performed merge of MAIN/A to MAIN/A/B"}
`

func TestLogReader_SkipsLinesWithoutPayload(t *testing.T) {
	r := mirror.NewLogReader(strings.NewReader(sampleLog))

	require.True(t, r.Next())
	require.Equal(t, 2, r.Line())
	require.Equal(t, "MAIN/A", r.Activity().BranchPath)
	require.JSONEq(t, `{"id":"10"}`, string(r.Activity().Changes["1"].Concept))

	require.True(t, r.Next())
	require.Equal(t, 4, r.Line())
	require.Equal(t, "MAIN/A/B", r.Activity().BranchPath)
	require.Empty(t, r.Activity().Changes)

	require.False(t, r.Next())
	require.NoError(t, r.Err())
}

func TestLogReader_AllYieldsInFileOrder(t *testing.T) {
	var lines []int
	var branches []string
	r := mirror.NewLogReader(strings.NewReader(sampleLog))
	for line, a := range r.All() {
		lines = append(lines, line)
		branches = append(branches, a.BranchPath)
	}
	require.NoError(t, r.Err())
	require.Equal(t, []int{2, 4}, lines)
	require.Equal(t, []string{"MAIN/A", "MAIN/A/B"}, branches)
}

func TestLogReader_DecodeErrorReportsLine(t *testing.T) {
	log := "noise\n" +
		`x {"branchPath":"MAIN"}` + "\n" +
		`x {"branchPath": MAIN}` + "\n" +
		`x {"branchPath":"MAIN/B"}` + "\n"

	r := mirror.NewLogReader(strings.NewReader(log))
	require.True(t, r.Next())
	require.False(t, r.Next())

	var lineErr *mirror.LineError
	require.ErrorAs(t, r.Err(), &lineErr)
	require.Equal(t, 3, lineErr.Line)
	require.Contains(t, r.Err().Error(), "line 3")

	// The reader does not continue past a bad line.
	require.False(t, r.Next())
}

func TestLogReader_TrailingNoiseAfterPayload(t *testing.T) {
	r := mirror.NewLogReader(strings.NewReader(`ts {"branchPath":"MAIN"} [thread-1]`))
	require.True(t, r.Next())
	require.Equal(t, "MAIN", r.Activity().BranchPath)
}

func TestDecompress(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	for name, input := range map[string][]byte{
		"plain": []byte(sampleLog),
		"gzip":  gz.Bytes(),
		"zstd":  zs.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			rc, err := mirror.Decompress(bytes.NewReader(input))
			require.NoError(t, err)
			defer rc.Close()

			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.Equal(t, sampleLog, string(data))
		})
	}
}

func TestDecompress_Empty(t *testing.T) {
	rc, err := mirror.Decompress(strings.NewReader(""))
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestOpenLog_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traceability.log.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	rc, err := mirror.OpenLog(path)
	require.NoError(t, err)
	r := mirror.NewLogReader(rc)
	count := 0
	for range r.All() {
		count++
	}
	require.NoError(t, r.Err())
	require.Equal(t, 2, count)
	require.NoError(t, rc.Close())
}

func TestOpenLog_Missing(t *testing.T) {
	_, err := mirror.OpenLog(filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
