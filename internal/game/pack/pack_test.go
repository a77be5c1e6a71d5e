package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(
		&Pack{ID: "rock", Name: "摇滚经典"},
		&Pack{ID: "pop", Name: "流行金曲"},
	)

	assert.Equal(t, []string{"pop", "rock"}, src.List(), "曲包 ID 应升序")

	p, ok := src.Get("rock")
	require.True(t, ok)
	assert.Equal(t, "摇滚经典", p.Name)

	_, ok = src.Get("jazz")
	assert.False(t, ok)
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "rock.json", `{
		"id": "rock",
		"name": "摇滚经典",
		"cards": [
			{"number": "1", "title": "Song A", "artist": "Band A", "year": "1985", "url": "https://example.com/a"}
		]
	}`)
	// ID 缺失时用文件名兜底
	writeFile(t, dir, "pop.json", `{"name": "流行金曲", "cards": []}`)
	// 损坏文件跳过，不影响其它曲包
	writeFile(t, dir, "broken.json", `{not json`)
	// 非 json 文件忽略
	writeFile(t, dir, "readme.txt", `hello`)

	ds, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"pop", "rock"}, ds.List())

	rock, ok := ds.Get("rock")
	require.True(t, ok)
	require.Len(t, rock.Cards, 1)
	assert.Equal(t, "Song A", rock.Cards[0].Title)
	assert.Equal(t, "1985", rock.Cards[0].Year)

	pop, ok := ds.Get("pop")
	require.True(t, ok)
	assert.Equal(t, "pop", pop.ID, "缺失 ID 应取文件名")
}

func TestLoadDirMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
