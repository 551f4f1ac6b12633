package paper

import (
	"bytes"
	"encoding/json"
)

// Section 提取出的章节
type Section struct {
	Title   string `json:"title"`   // 小写后的章节标题
	Content string `json:"content"` // 去除首尾空白的章节正文
}

// Sections 按插入顺序保存的章节映射
// 键为小写标题；重复写入同一个键时保留首次出现的位置，内容取最后一次
type Sections struct {
	keys   []string
	values map[string]string
}

// NewSections 创建空的章节映射
func NewSections() *Sections {
	return &Sections{values: make(map[string]string)}
}

// Set 写入章节内容
func (s *Sections) Set(key, content string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = content
}

// Get 获取章节内容
func (s *Sections) Get(key string) (string, bool) {
	if s == nil || s.values == nil {
		return "", false
	}
	content, ok := s.values[key]
	return content, ok
}

// Len 返回章节数量
func (s *Sections) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys 按插入顺序返回所有键
func (s *Sections) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Values 按插入顺序返回所有章节内容
func (s *Sections) Values() []string {
	if s == nil {
		return nil
	}
	values := make([]string, len(s.keys))
	for i, key := range s.keys {
		values[i] = s.values[key]
	}
	return values
}

// List 按插入顺序返回章节列表
func (s *Sections) List() []Section {
	if s == nil {
		return []Section{}
	}
	list := make([]Section, len(s.keys))
	for i, key := range s.keys {
		list[i] = Section{Title: key, Content: s.values[key]}
	}
	return list
}

// MarshalJSON 序列化为 JSON 对象，字段顺序与插入顺序一致
func (s *Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if s != nil {
		for i, key := range s.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(s.values[key])
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
