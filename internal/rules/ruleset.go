package rules

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
)

//go:embed default.yaml
var defaultRuleset []byte

// Block is a point-buy group: the slot names, the value multiset spread
// across them and the range final values must respect.
type Block struct {
	Names  []string `yaml:"names"`
	Values []int    `yaml:"values"`
	Range  Range    `yaml:"range"`
}

// Archetype is a background template
type Archetype struct {
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description"`
	SkillModifiers map[string]int `yaml:"skill_modifiers"`
	DriveModifiers map[string]int `yaml:"drive_modifiers"`
	Talents        []string       `yaml:"talents"`
	Assets         []string       `yaml:"assets"`
	Focuses        []string       `yaml:"focuses"`
}

// Determination holds the starting and maximum determination points
type Determination struct {
	Starting int `yaml:"starting"`
	Max      int `yaml:"max"`
}

// Ruleset is the declarative rule table behind character building
type Ruleset struct {
	Name   string `yaml:"name"`
	Skills Block  `yaml:"skills"`
	Drives Block  `yaml:"drives"`

	ArchetypeCount     Range `yaml:"archetype_count"`
	TraitCount         Range `yaml:"trait_count"`
	MinFocuses         int   `yaml:"min_focuses"`
	StatementThreshold int   `yaml:"statement_threshold"`

	TalentCount int `yaml:"talent_count"`
	AssetCount  int `yaml:"asset_count"`
	// BlendedCounts switches multi-archetype builds to one talent and one
	// asset per archetype
	BlendedCounts bool `yaml:"blended_counts"`

	Determination     Determination `yaml:"determination"`
	CoreDice          int           `yaml:"core_dice"`
	ComplicationValue int           `yaml:"complication_value"`

	GeneralTalents []string    `yaml:"general_talents"`
	GeneralAssets  []string    `yaml:"general_assets"`
	Archetypes     []Archetype `yaml:"archetypes"`

	archetypes map[string]*Archetype
	skills     map[string]string
	drives     map[string]string
}

var (
	titler = cases.Title(language.English)
	folder = cases.Fold()
)

// NormalizeName trims, collapses whitespace and title-cases a name
func NormalizeName(name string) string {
	return titler.String(strings.Join(strings.Fields(name), " "))
}

func foldKey(name string) string {
	return folder.String(strings.Join(strings.Fields(name), " "))
}

// Default returns the embedded ruleset
func Default() (*Ruleset, error) {
	return Parse(defaultRuleset)
}

// MustDefault is Default for package initialisation and tests
func MustDefault() *Ruleset {
	rs, err := Default()
	if err != nil {
		panic(err)
	}
	return rs
}

// Load reads a ruleset from a YAML file
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and checks a YAML ruleset
func Parse(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse ruleset: %w", err)
	}
	if err := rs.init(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *Ruleset) init() error {
	if err := checkBlock("skills", rs.Skills); err != nil {
		return err
	}
	if err := checkBlock("drives", rs.Drives); err != nil {
		return err
	}
	if rs.ArchetypeCount.Min < 1 || rs.ArchetypeCount.Max < rs.ArchetypeCount.Min {
		return dnderr.InvalidArgumentf("ruleset archetype_count %s is invalid", rs.ArchetypeCount)
	}
	if rs.TraitCount.Max < rs.TraitCount.Min {
		return dnderr.InvalidArgumentf("ruleset trait_count %s is invalid", rs.TraitCount)
	}
	if rs.TalentCount < 1 || rs.AssetCount < 1 {
		return dnderr.InvalidArgument("ruleset talent_count and asset_count must be positive")
	}
	if rs.CoreDice == 0 {
		rs.CoreDice = 2
	}
	if rs.ComplicationValue == 0 {
		rs.ComplicationValue = 20
	}

	rs.skills = nameIndex(rs.Skills.Names)
	rs.drives = nameIndex(rs.Drives.Names)
	rs.archetypes = make(map[string]*Archetype, len(rs.Archetypes))
	for i := range rs.Archetypes {
		a := &rs.Archetypes[i]
		key := foldKey(a.Name)
		if _, dup := rs.archetypes[key]; dup {
			return dnderr.InvalidArgumentf("ruleset lists archetype '%s' twice", a.Name)
		}
		for skill := range a.SkillModifiers {
			if _, ok := rs.skills[foldKey(skill)]; !ok {
				return dnderr.InvalidArgumentf("archetype '%s' modifies unknown skill '%s'", a.Name, skill)
			}
		}
		for drive := range a.DriveModifiers {
			if _, ok := rs.drives[foldKey(drive)]; !ok {
				return dnderr.InvalidArgumentf("archetype '%s' modifies unknown drive '%s'", a.Name, drive)
			}
		}
		rs.archetypes[key] = a
	}
	return nil
}

func checkBlock(name string, b Block) error {
	if len(b.Names) == 0 {
		return dnderr.InvalidArgumentf("ruleset %s has no names", name)
	}
	if len(b.Names) != len(b.Values) {
		return dnderr.InvalidArgumentf("ruleset %s has %d names but %d values", name, len(b.Names), len(b.Values))
	}
	for _, v := range b.Values {
		if !b.Range.Contains(v) {
			return dnderr.InvalidArgumentf("ruleset %s value %d outside range %s", name, v, b.Range)
		}
	}
	return nil
}

func nameIndex(names []string) map[string]string {
	idx := make(map[string]string, len(names))
	for _, n := range names {
		idx[foldKey(n)] = n
	}
	return idx
}

// Archetype looks up an archetype by case-insensitive name
func (rs *Ruleset) Archetype(name string) (*Archetype, bool) {
	a, ok := rs.archetypes[foldKey(name)]
	return a, ok
}

// SkillName maps user input onto a canonical skill name
func (rs *Ruleset) SkillName(name string) (string, bool) {
	n, ok := rs.skills[foldKey(name)]
	return n, ok
}

// DriveName maps user input onto a canonical drive name
func (rs *Ruleset) DriveName(name string) (string, bool) {
	n, ok := rs.drives[foldKey(name)]
	return n, ok
}

// CanonicalSkills rewrites assignment keys to canonical skill names.
// Unrecognised keys are title-cased and kept so validation can report them.
// Two spellings of the same skill are a ValidationError; the returned map
// still holds the alphabetically first spelling's value.
func (rs *Ruleset) CanonicalSkills(assignment map[string]int) (map[string]int, error) {
	return canonical("skills", assignment, rs.skills)
}

// CanonicalDrives rewrites assignment keys to canonical drive names
func (rs *Ruleset) CanonicalDrives(assignment map[string]int) (map[string]int, error) {
	return canonical("drives", assignment, rs.drives)
}

func canonical(field string, assignment map[string]int, index map[string]string) (map[string]int, error) {
	out := make(map[string]int, len(assignment))
	seen := make(map[string]string, len(assignment))
	var err error
	for _, k := range sortedKeys(assignment) {
		n, ok := index[foldKey(k)]
		if !ok {
			n = NormalizeName(k)
		}
		if prev, dup := seen[n]; dup {
			if err == nil {
				err = dnderr.Validationf("%s is listed twice, as '%s' and '%s'", n, prev, k).
					WithField(field, "each name once", []string{prev, k}).
					WithMeta(dnderr.MetaReason, ReasonMissingOrUnknown).
					WithMeta("duplicates", []string{prev, k})
			}
			continue
		}
		seen[n] = k
		out[n] = assignment[k]
	}
	return out, err
}

// ResolveArchetypes validates the count of the selection and returns the
// matching archetypes in selection order.
func (rs *Ruleset) ResolveArchetypes(names []string) ([]*Archetype, error) {
	if !rs.ArchetypeCount.Contains(len(names)) {
		return nil, dnderr.Validationf("choose between %d and %d archetypes",
			rs.ArchetypeCount.Min, rs.ArchetypeCount.Max).
			WithField("archetypes", rs.ArchetypeCount.String(), len(names))
	}

	out := make([]*Archetype, 0, len(names))
	for _, name := range names {
		a, ok := rs.Archetype(name)
		if !ok {
			return nil, dnderr.Validationf("unknown archetype '%s'", name).
				WithField("archetypes", rs.ArchetypeNames(), name)
		}
		if slices.Contains(out, a) {
			return nil, dnderr.Validationf("archetype '%s' selected twice", a.Name).
				WithField("archetypes", "distinct archetypes", name)
		}
		out = append(out, a)
	}
	return out, nil
}

// ArchetypeNames lists the catalog in file order
func (rs *Ruleset) ArchetypeNames() []string {
	names := make([]string, 0, len(rs.Archetypes))
	for _, a := range rs.Archetypes {
		names = append(names, a.Name)
	}
	return names
}

// ValidateSkills runs the point-buy check for skills, applying the skill
// modifiers of every named archetype.
func (rs *Ruleset) ValidateSkills(assignment map[string]int, archetypes []string) error {
	mods, err := rs.modifiers(archetypes, func(a *Archetype) map[string]int { return a.SkillModifiers })
	if err != nil {
		return err
	}
	canon, err := rs.CanonicalSkills(assignment)
	if err != nil {
		return err
	}
	return Validate(canon, rs.Skills.Names, rs.Skills.Values,
		shared(rs.Skills), mods...)
}

// ValidateDrives runs the point-buy check for drives
func (rs *Ruleset) ValidateDrives(assignment map[string]int, archetypes []string) error {
	mods, err := rs.modifiers(archetypes, func(a *Archetype) map[string]int { return a.DriveModifiers })
	if err != nil {
		return err
	}
	canon, err := rs.CanonicalDrives(assignment)
	if err != nil {
		return err
	}
	return Validate(canon, rs.Drives.Names, rs.Drives.Values,
		shared(rs.Drives), mods...)
}

// FinalSkills returns raw skill values plus archetype modifiers
func (rs *Ruleset) FinalSkills(assignment map[string]int, archetypes []string) map[string]int {
	canon, _ := rs.CanonicalSkills(assignment)
	return rs.final(canon, archetypes, func(a *Archetype) map[string]int { return a.SkillModifiers })
}

// FinalDrives returns raw drive values plus archetype modifiers
func (rs *Ruleset) FinalDrives(assignment map[string]int, archetypes []string) map[string]int {
	canon, _ := rs.CanonicalDrives(assignment)
	return rs.final(canon, archetypes, func(a *Archetype) map[string]int { return a.DriveModifiers })
}

func (rs *Ruleset) final(assignment map[string]int, archetypes []string, pick func(*Archetype) map[string]int) map[string]int {
	out := make(map[string]int, len(assignment))
	for k, v := range assignment {
		out[k] = v
	}
	for _, name := range archetypes {
		a, ok := rs.Archetype(name)
		if !ok {
			continue
		}
		for k, mod := range pick(a) {
			out[k] += mod
		}
	}
	return out
}

// modifiers returns one modifier map per archetype with at least one
// adjustment; an empty result skips the range check.
func (rs *Ruleset) modifiers(archetypes []string, pick func(*Archetype) map[string]int) ([]map[string]int, error) {
	var mods []map[string]int
	for _, name := range archetypes {
		a, ok := rs.Archetype(name)
		if !ok {
			return nil, dnderr.Validationf("unknown archetype '%s'", name).
				WithField("archetypes", rs.ArchetypeNames(), name)
		}
		if m := pick(a); len(m) > 0 {
			mods = append(mods, m)
		}
	}
	return mods, nil
}

func shared(b Block) map[string]Range {
	ranges := make(map[string]Range, len(b.Names))
	for _, n := range b.Names {
		ranges[n] = b.Range
	}
	return ranges
}

// ExpectedTalents is the number of talents a build with archetypeCount
// archetypes must pick.
func (rs *Ruleset) ExpectedTalents(archetypeCount int) int {
	if rs.BlendedCounts && archetypeCount > 1 {
		return archetypeCount
	}
	return rs.TalentCount
}

// ExpectedAssets mirrors ExpectedTalents for assets
func (rs *Ruleset) ExpectedAssets(archetypeCount int) int {
	if rs.BlendedCounts && archetypeCount > 1 {
		return archetypeCount
	}
	return rs.AssetCount
}

// TalentOptions lists the talents open to the named archetypes followed by
// the general talents.
func (rs *Ruleset) TalentOptions(archetypes []string) []string {
	return rs.options(archetypes, rs.GeneralTalents, func(a *Archetype) []string { return a.Talents })
}

// AssetOptions lists the assets open to the named archetypes
func (rs *Ruleset) AssetOptions(archetypes []string) []string {
	return rs.options(archetypes, rs.GeneralAssets, func(a *Archetype) []string { return a.Assets })
}

func (rs *Ruleset) options(archetypes, general []string, pick func(*Archetype) []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(items []string) {
		for _, item := range items {
			if key := foldKey(item); !seen[key] {
				seen[key] = true
				out = append(out, item)
			}
		}
	}
	for _, name := range archetypes {
		if a, ok := rs.Archetype(name); ok {
			add(pick(a))
		}
	}
	add(general)
	return out
}

// ValidateTalents checks the count and availability of selected talents
func (rs *Ruleset) ValidateTalents(selected, archetypes []string) error {
	return validateSelection("talents", selected, rs.ExpectedTalents(len(archetypes)), rs.TalentOptions(archetypes))
}

// ValidateAssets checks the count and availability of selected assets
func (rs *Ruleset) ValidateAssets(selected, archetypes []string) error {
	return validateSelection("assets", selected, rs.ExpectedAssets(len(archetypes)), rs.AssetOptions(archetypes))
}

func validateSelection(field string, selected []string, expected int, options []string) error {
	if len(selected) != expected {
		return dnderr.Validationf("choose exactly %d %s", expected, field).
			WithField(field, expected, len(selected))
	}

	allowed := nameIndex(options)
	seen := make(map[string]bool, len(selected))
	for _, item := range selected {
		key := foldKey(item)
		if _, ok := allowed[key]; !ok {
			return dnderr.Validationf("'%s' is not available", item).
				WithField(field, options, item)
		}
		if seen[key] {
			return dnderr.Validationf("'%s' selected twice", item).
				WithField(field, "distinct choices", item)
		}
		seen[key] = true
	}
	return nil
}

// ValidateTraits checks the trait count and that every trait is named
func (rs *Ruleset) ValidateTraits(traits []string) error {
	if !rs.TraitCount.Contains(len(traits)) {
		return dnderr.Validationf("choose between %d and %d traits", rs.TraitCount.Min, rs.TraitCount.Max).
			WithField("traits", rs.TraitCount.String(), len(traits))
	}
	for _, t := range traits {
		if strings.TrimSpace(t) == "" {
			return dnderr.Validation("traits cannot be blank").
				WithField("traits", "non-empty", t)
		}
	}
	return nil
}

// StatementDrives lists, in ruleset order, the drives rated high enough to
// need a drive statement.
func (rs *Ruleset) StatementDrives(drives map[string]int) []string {
	canon, _ := rs.CanonicalDrives(drives)
	var out []string
	for _, name := range rs.Drives.Names {
		if v, ok := canon[name]; ok && v >= rs.StatementThreshold {
			out = append(out, name)
		}
	}
	return out
}
