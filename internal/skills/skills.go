// Package skills loads workspace skills: folders holding a SKILL.toml
// manifest or a SKILL.md file with YAML frontmatter.
package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	TOMLManifest     = "SKILL.toml"
	MarkdownManifest = "SKILL.md"
)

// Skill is a named block of instructions added to the system prompt.
type Skill struct {
	Name        string   `toml:"name" yaml:"name"`
	Description string   `toml:"description" yaml:"description"`
	Version     string   `toml:"version" yaml:"version,omitempty"`
	Tags        []string `toml:"tags" yaml:"tags,omitempty"`

	// Prompts are appended verbatim, in order.
	Prompts []string `toml:"prompts" yaml:"-"`

	Path string `toml:"-" yaml:"-"`
}

type tomlManifest struct {
	Skill Skill `toml:"skill"`
}

// LoadAll loads every skill under dir, sorted by name. A missing dir yields
// no skills. Broken skills are skipped and reported in the joined error.
func LoadAll(dir string) ([]Skill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read skills directory: %w", err)
	}

	var (
		skills []Skill
		errs   []error
	)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			if errors.Is(err, ErrNoManifest) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		skills = append(skills, *s)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, errors.Join(errs...)
}

var ErrNoManifest = errors.New("no skill manifest")

// Load reads one skill directory, preferring SKILL.toml over SKILL.md.
func Load(skillDir string) (*Skill, error) {
	var (
		s   *Skill
		err error
	)
	if data, rerr := os.ReadFile(filepath.Join(skillDir, TOMLManifest)); rerr == nil {
		s, err = ParseTOML(string(data))
	} else if data, rerr := os.ReadFile(filepath.Join(skillDir, MarkdownManifest)); rerr == nil {
		s, err = ParseMarkdown(string(data))
	} else {
		return nil, fmt.Errorf("%w in %s", ErrNoManifest, skillDir)
	}
	if err != nil {
		return nil, fmt.Errorf("skill %s: %w", filepath.Base(skillDir), err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(skillDir)
	}
	s.Path = skillDir
	return s, nil
}

// ParseTOML parses a SKILL.toml manifest.
func ParseTOML(content string) (*Skill, error) {
	var m tomlManifest
	if _, err := toml.Decode(content, &m); err != nil {
		return nil, fmt.Errorf("invalid SKILL.toml: %w", err)
	}
	if m.Skill.Description == "" {
		return nil, errors.New("missing required field: description")
	}
	return &m.Skill, nil
}

// ParseMarkdown parses a SKILL.md file. The body after the frontmatter
// becomes the skill's single prompt.
func ParseMarkdown(content string) (*Skill, error) {
	front, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}
	s := &Skill{}
	if err := yaml.Unmarshal([]byte(front), s); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}
	if s.Description == "" {
		return nil, errors.New("missing required field: description")
	}
	if body = strings.TrimSpace(body); body != "" {
		s.Prompts = []string{body}
	}
	return s, nil
}

func splitFrontmatter(content string) (front, body string, err error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", "", errors.New("missing frontmatter delimiter")
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", errors.New("unclosed frontmatter")
}

// PromptSection renders skills for the system prompt. It is empty when
// there are no skills.
func PromptSection(skills []Skill) string {
	if len(skills) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Skills\n\n")
	for _, s := range skills {
		fmt.Fprintf(&sb, "### %s\n%s\n", s.Name, s.Description)
		for _, p := range s.Prompts {
			sb.WriteString("\n")
			sb.WriteString(strings.TrimSpace(p))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
