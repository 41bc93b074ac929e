package promptbuild

import (
	"strings"

	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/config"
	"github.com/kayz/promptblocks/internal/logger"
)

// DefaultPreamble introduces the block sections to the generation service.
const DefaultPreamble = "You are an expert software engineer. The request below is split into " +
	"sections, each introduced by a bracketed header such as [CONTEXT] or [REQUIREMENT]. " +
	"Read every section in order and produce a response that satisfies all of them.\n\n"

// FallbackHeader labels blocks whose type is not in the registry.
const FallbackHeader = "BLOCK"

// Serialize renders blocks in sequence order after preamble. Each block
// becomes an uppercase bracketed header, its content and a blank line.
// Content is copied verbatim.
func Serialize(preamble string, list []blocks.Block, registry *blocks.Registry) string {
	sections := buildSections(list, registry)
	return preamble + renderSections(sections)
}

type section struct {
	title   string
	content string
}

func buildSections(list []blocks.Block, registry *blocks.Registry) []section {
	sections := make([]section, 0, len(list))
	for _, b := range list {
		sections = append(sections, section{title: headerFor(b.TypeID, registry), content: b.Content})
	}
	return sections
}

func headerFor(typeID string, registry *blocks.Registry) string {
	bt, ok := registry.Lookup(typeID)
	if !ok {
		return FallbackHeader
	}
	return strings.ToUpper(bt.DisplayName)
}

func renderSections(sections []section) string {
	var out strings.Builder
	for i, s := range sections {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString("[")
		out.WriteString(s.title)
		out.WriteString("]\n")
		out.WriteString(s.content)
		out.WriteString("\n")
	}
	return out.String()
}

// Builder serializes collections with a fixed preamble and registry, and
// optionally records each built prompt in the audit log.
type Builder struct {
	cfg      config.PromptBuildConfig
	registry *blocks.Registry
	preamble string
}

// NewBuilder creates a Builder. A nil preamble selects DefaultPreamble.
func NewBuilder(cfg config.PromptBuildConfig, registry *blocks.Registry, preamble *string) *Builder {
	if cfg.RootDir == "" {
		cfg.RootDir = "."
	}
	if registry == nil {
		registry = blocks.DefaultRegistry()
	}
	p := DefaultPreamble
	if preamble != nil {
		p = *preamble
	}
	return &Builder{cfg: cfg, registry: registry, preamble: p}
}

func (b *Builder) Registry() *blocks.Registry {
	return b.registry
}

func (b *Builder) Preamble() string {
	return b.preamble
}

// Render serializes coll without side effects.
func (b *Builder) Render(coll blocks.Collection) string {
	return Serialize(b.preamble, coll.Blocks(), b.registry)
}

// Build serializes coll and writes an audit record when auditing is enabled.
// Audit failures are logged, never returned.
func (b *Builder) Build(coll blocks.Collection) string {
	list := coll.Blocks()
	sections := buildSections(list, b.registry)
	out := b.preamble + renderSections(sections)
	if err := b.writeAuditRecord(len(list), out, sections); err != nil {
		logger.Warn("Prompt audit record failed: %v", err)
	}
	return out
}
