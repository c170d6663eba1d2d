package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"gridadventure/internal/sim/entity"
)

// AssetDef maps an appearance name plus a set of required properties to the
// asset a renderer should draw.
type AssetDef struct {
	Appearance string   `yaml:"appearance" json:"appearance"`
	Properties []string `yaml:"properties,omitempty" json:"properties,omitempty"`
	Asset      string   `yaml:"asset" json:"asset"`
}

func (d AssetDef) key() string {
	props := append([]string(nil), d.Properties...)
	sort.Strings(props)
	return d.Appearance + "|" + strings.Join(props, ",")
}

type AssetCatalog struct {
	Defs   []AssetDef
	Digest string

	byAppearance map[string][]AssetDef
}

var builtin = []AssetDef{
	{Appearance: "human", Asset: "human"},
	{Appearance: "human", Properties: []string{"dead"}, Asset: "sleeping"},
	{Appearance: "coin", Asset: "coin"},
	{Appearance: "gem", Properties: []string{"requirable"}, Asset: "gem"},
	{Appearance: "box", Properties: []string{"pushable"}, Asset: "box"},
	{Appearance: "key", Asset: "key"},
	{Appearance: "door", Properties: []string{"locked"}, Asset: "locked"},
	{Appearance: "door", Asset: "opened"},
	{Appearance: "shield", Properties: []string{"immunity"}, Asset: "shield"},
	{Appearance: "ghost", Properties: []string{"phasing"}, Asset: "ghost"},
	{Appearance: "boots", Properties: []string{"speed"}, Asset: "boots"},
	{Appearance: "lava", Asset: "lava"},
	{Appearance: "exit", Asset: "exit"},
	{Appearance: "wall", Asset: "wall"},
	{Appearance: "floor", Asset: "floor"},
}

// Builtin returns the stock asset table.
func Builtin() *AssetCatalog {
	c, err := newCatalog(builtin)
	if err != nil {
		panic(err)
	}
	return c
}

type assetsFile struct {
	Assets []AssetDef `yaml:"assets"`
}

// LoadAssets reads a YAML asset table and layers it over the builtin one.
// Entries with the same appearance and property set replace the builtin
// entry in place; the rest are appended.
func LoadAssets(path string) (*AssetCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f assetsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("assets.yaml: %w", err)
	}

	defs := append([]AssetDef(nil), builtin...)
	pos := make(map[string]int, len(defs))
	for i, d := range defs {
		pos[d.key()] = i
	}
	for i, d := range f.Assets {
		if d.Appearance == "" || d.Asset == "" {
			return nil, fmt.Errorf("assets.yaml: entry %d: appearance and asset are required", i)
		}
		if j, ok := pos[d.key()]; ok {
			defs[j] = d
			continue
		}
		pos[d.key()] = len(defs)
		defs = append(defs, d)
	}
	return newCatalog(defs)
}

func newCatalog(defs []AssetDef) (*AssetCatalog, error) {
	c := &AssetCatalog{Defs: defs, byAppearance: map[string][]AssetDef{}}
	seen := map[string]bool{}
	for _, d := range defs {
		k := d.key()
		if seen[k] {
			return nil, fmt.Errorf("catalogs: duplicate asset entry %q", k)
		}
		seen[k] = true
		c.byAppearance[d.Appearance] = append(c.byAppearance[d.Appearance], d)
	}

	keys := make([]string, 0, len(defs))
	byKey := make(map[string]string, len(defs))
	for _, d := range defs {
		keys = append(keys, d.key())
		byKey[d.key()] = d.Asset
	}
	sort.Strings(keys)
	canon := make([][2]string, 0, len(keys))
	for _, k := range keys {
		canon = append(canon, [2]string{k, byKey[k]})
	}
	b, _ := json.Marshal(canon)
	c.Digest = sha256Hex(b)
	return c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Lookup picks the entry for appearance whose properties are all present in
// props, preferring the entry that requires the most properties. Ties go to
// the entry listed first.
func (c *AssetCatalog) Lookup(appearance string, props []string) (string, bool) {
	have := make(map[string]bool, len(props))
	for _, p := range props {
		have[p] = true
	}
	best, bestN := "", -1
	for _, d := range c.byAppearance[appearance] {
		ok := true
		for _, p := range d.Properties {
			if !have[p] {
				ok = false
				break
			}
		}
		if ok && len(d.Properties) > bestN {
			best, bestN = d.Asset, len(d.Properties)
		}
	}
	return best, bestN >= 0
}

// AssetFor resolves the asset of a single object.
func (c *AssetCatalog) AssetFor(o entity.Object) (string, bool) {
	if o == nil {
		return "", false
	}
	g := o.Generic()
	if g.Appearance == nil {
		return "", false
	}
	return c.Lookup(g.Appearance.Name, Properties(o))
}

// Properties lists the components present on o, by name, sorted.
// Appearance is not a property.
func Properties(o entity.Object) []string {
	if o == nil {
		return nil
	}
	g := o.Generic()
	var out []string
	add := func(present bool, name string) {
		if present {
			out = append(out, name)
		}
	}
	add(g.Agent != nil, "agent")
	add(g.Blocking != nil, "blocking")
	add(g.Collectible != nil, "collectible")
	add(g.Collidable != nil, "collidable")
	add(g.Cost != nil, "cost")
	add(g.Damage != nil, "damage")
	add(g.Dead != nil, "dead")
	add(g.Exit != nil, "exit")
	add(g.Health != nil, "health")
	add(g.Immunity != nil, "immunity")
	add(g.Inventory != nil, "inventory")
	add(g.Key != nil, "key")
	add(g.Locked != nil, "locked")
	add(g.Moving != nil, "moving")
	add(g.Phasing != nil, "phasing")
	add(g.Portal != nil, "portal")
	add(g.Pushable != nil, "pushable")
	add(g.Requirable != nil, "requirable")
	add(g.Rewardable != nil, "rewardable")
	add(g.Speed != nil, "speed")
	add(g.Status != nil, "status")
	add(g.TimeLimit != nil, "time_limit")
	add(g.UsageLimit != nil, "usage_limit")
	return out
}
