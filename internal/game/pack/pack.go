package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// SourceCard 曲包中的一首歌（年份保留原文，构牌时再归一化）
type SourceCard struct {
	Number       string `json:"number"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Year         string `json:"year"`
	URL          string `json:"url"`
	YoutubeTitle string `json:"youtube_title,omitempty"`
	ISRC         string `json:"isrc,omitempty"`
}

// Pack 一个曲包
type Pack struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Cards []SourceCard `json:"cards"`
}

// Source 曲包数据源。引擎只通过该接口取曲包，不接触文件系统。
type Source interface {
	// List 返回所有可用曲包 ID（升序）
	List() []string
	// Get 按 ID 取曲包，不存在时返回 false
	Get(id string) (*Pack, bool)
}

// StaticSource 内存曲包源（测试和内置曲包用）
type StaticSource struct {
	packs map[string]*Pack
}

// NewStaticSource 用给定曲包构造内存数据源
func NewStaticSource(packs ...*Pack) *StaticSource {
	s := &StaticSource{packs: make(map[string]*Pack, len(packs))}
	for _, p := range packs {
		s.packs[p.ID] = p
	}
	return s
}

func (s *StaticSource) List() []string {
	ids := make([]string, 0, len(s.packs))
	for id := range s.packs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *StaticSource) Get(id string) (*Pack, bool) {
	p, ok := s.packs[id]
	return p, ok
}

// DirSource 从目录加载 JSON 曲包文件（<id>.json），启动时一次性读入
type DirSource struct {
	packs map[string]*Pack
	mu    sync.RWMutex
}

// LoadDir 读取目录下所有 .json 曲包文件
func LoadDir(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取曲包目录失败: %w", err)
	}

	ds := &DirSource{packs: make(map[string]*Pack)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := loadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			// 单个曲包损坏不影响其它曲包加载
			continue
		}
		if p.ID == "" {
			p.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		ds.packs[p.ID] = p
	}
	return ds, nil
}

func loadFile(path string) (*Pack, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("解析曲包文件 %s 失败: %w", path, err)
	}
	return &p, nil
}

func (ds *DirSource) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	ids := make([]string, 0, len(ds.packs))
	for id := range ds.packs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (ds *DirSource) Get(id string) (*Pack, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	p, ok := ds.packs[id]
	return p, ok
}
