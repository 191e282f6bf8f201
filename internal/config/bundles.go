package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// SelectorBundle maps (cms_kind, named_element) to an ordered list of
// candidate CSS selectors (§4.9 "Selector bundle"). Providers never see
// raw selectors except by resolving through this type.
type SelectorBundle struct {
	// raw is keyed "cms_kind/named_element" -> ordered candidates.
	raw map[string][]string
}

// selectorFile is the on-disk YAML shape: cms_kind -> named_element ->
// candidate list.
type selectorFile map[string]map[string][]string

// RequiredSelectorNames must be present for every cms_kind the bundle
// declares support for; startup fails otherwise (§4.9 "validated at load
// for a list of required names").
var RequiredSelectorNames = []string{
	"new_post_title",
	"new_post_body",
	"login_username",
	"login_password",
	"login_submit",
	"dashboard_sentinel",
	"save_draft_button",
	"publish_button",
	"publish_confirm",
	"draft_saved_notice",
	"published_panel",
	"media_upload_dialog",
	"media_alt_field",
	"media_caption_field",
	"featured_image_control",
	"category_checkbox",
	"category_make_primary",
	"tag_input",
	"schedule_affordance",
	"schedule_date_field",
	"schedule_time_field",
	"view_post_link",
}

func LoadSelectorBundle(path string) (*SelectorBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selector bundle: %w", err)
	}
	var parsed selectorFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse selector bundle: %w", err)
	}
	b := &SelectorBundle{raw: make(map[string][]string)}
	for kind, elements := range parsed {
		for name, candidates := range elements {
			b.raw[key(kind, name)] = candidates
		}
	}
	if err := b.validate(parsed); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *SelectorBundle) validate(parsed selectorFile) error {
	var missing []string
	for kind, elements := range parsed {
		for _, name := range RequiredSelectorNames {
			if len(elements[name]) == 0 {
				missing = append(missing, kind+"/"+name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return model.NewPhaseError(model.ErrConfigInvalid,
			"selector bundle missing required entries: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Candidates returns the ordered candidate selectors for a named element
// under a given cms_kind.
func (b *SelectorBundle) Candidates(cmsKind, namedElement string) []string {
	return b.raw[key(cmsKind, namedElement)]
}

func key(cmsKind, name string) string { return cmsKind + "/" + name }

// InstructionBundle maps action_name to a templated instruction string
// with recognized placeholders (§4.9 "Instruction bundle").
type InstructionBundle struct {
	templates map[string]string
}

// RequiredInstructionActions must be present; startup fails otherwise.
var RequiredInstructionActions = []string{
	"login",
	"set_title",
	"set_body",
	"insert_image",
	"set_featured_image",
	"set_taxonomy",
	"set_seo",
	"insert_related_articles",
	"insert_faq_schema",
	"save_draft",
	"publish",
	"schedule",
}

func LoadInstructionBundle(path string) (*InstructionBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruction bundle: %w", err)
	}
	var parsed map[string]string
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse instruction bundle: %w", err)
	}
	ib := &InstructionBundle{templates: parsed}
	if err := ib.validate(); err != nil {
		return nil, err
	}
	return ib, nil
}

func (ib *InstructionBundle) validate() error {
	var missing []string
	for _, action := range RequiredInstructionActions {
		if _, ok := ib.templates[action]; !ok {
			missing = append(missing, action)
		}
	}
	if len(missing) > 0 {
		return model.NewPhaseError(model.ErrConfigInvalid,
			"instruction bundle missing required actions: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Get renders the template for action, substituting "{{key}}" placeholders
// from vars. It is the only way a caller reaches an instruction string.
//
// Round-trip law (spec.md §8): extracting placeholders from the rendered
// instruction is not possible once substituted, so Get also returns the
// set of placeholder keys it found, letting callers assert
// set(placeholders) == set(vars.keys()) in tests.
func (ib *InstructionBundle) Get(action string, vars map[string]string) (string, []string, error) {
	tmpl, ok := ib.templates[action]
	if !ok {
		return "", nil, fmt.Errorf("unknown instruction action %q", action)
	}
	placeholders := extractPlaceholders(tmpl)
	rendered := tmpl
	for _, ph := range placeholders {
		val, ok := vars[ph]
		if !ok {
			return "", placeholders, fmt.Errorf("missing var %q for action %q", ph, action)
		}
		rendered = strings.ReplaceAll(rendered, "{{"+ph+"}}", val)
	}
	return rendered, placeholders, nil
}

func extractPlaceholders(tmpl string) []string {
	var out []string
	seen := map[string]bool{}
	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			break
		}
		name := strings.TrimSpace(rest[start+2 : start+end])
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		rest = rest[start+end+2:]
	}
	return out
}
