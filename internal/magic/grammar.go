package magic

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// descriptor is the inline-grammar AST root (spec §4.6's supplemented
// "compact inline descriptor grammar", e.g. "dot poison 5/3s for 12s").
// It parses to the same EffectDesc struct the content-loading JSON path
// produces, so callers never need to know which front end built a value.
type descriptor struct {
	Damage   *damageClause   `  "damage" @@`
	LifeTap  *damageClause   `| "life_tap" @@`
	Heal     *healClause     `| "heal" @@`
	Cleanse  *cleanseClause  `| "cleanse" @@`
	Dot      *dotClause      `| "dot" @@`
	Hot      *dotClause      `| "hot" @@`
	StatMod  *statModClause  `| "stat_mod" @@`
	Control  *controlClause  `| "control" @@`
}

type damageClause struct {
	Value      int     `@Number`
	DamageType *string `@Ident?`
}

type healClause struct {
	Value int `@Number`
}

type cleanseClause struct {
	Tags []string `@Ident*`
}

type dotClause struct {
	Name       string  `@Ident`
	Value      int     `@Number "/" `
	Interval   string  `@Duration "for"`
	Duration   string  `@Duration`
	DamageType *string `@Ident?`
}

type statModClause struct {
	Stat  string `@Ident`
	Delta int    `@Number "for"`
	Dur   string `@Duration`
}

type controlClause struct {
	Name string `@Ident "for"`
	Dur  string `@Duration`
}

var descriptorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Duration", Pattern: `[0-9]+(ms|s|m|h)`},
	{Name: "Number", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `/`},
})

var descriptorParser = participle.MustBuild[descriptor](
	participle.Lexer(descriptorLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseEffectDescriptor parses a compact inline effect string such as
// "dot poison 5/3s for 12s" or "stat_mod strength -5 for 8s" into an
// EffectDesc.
func ParseEffectDescriptor(text string) (*EffectDesc, error) {
	d, err := descriptorParser.ParseString("", strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("parsing effect descriptor %q: %w", text, err)
	}

	switch {
	case d.Damage != nil:
		desc := &EffectDesc{Type: EffectDamage, Value: d.Damage.Value, DamageType: "magical"}
		if d.Damage.DamageType != nil {
			desc.DamageType = *d.Damage.DamageType
		}
		return desc, nil

	case d.LifeTap != nil:
		desc := &EffectDesc{Type: EffectLifeTap, Value: d.LifeTap.Value, DamageType: "magical"}
		if d.LifeTap.DamageType != nil {
			desc.DamageType = *d.LifeTap.DamageType
		}
		return desc, nil

	case d.Heal != nil:
		return &EffectDesc{Type: EffectHeal, Value: d.Heal.Value}, nil

	case d.Cleanse != nil:
		return &EffectDesc{Type: EffectCleanse, Tags: d.Cleanse.Tags}, nil

	case d.Dot != nil:
		interval, err := time.ParseDuration(d.Dot.Interval)
		if err != nil {
			return nil, fmt.Errorf("parsing dot tick interval: %w", err)
		}
		duration, err := time.ParseDuration(d.Dot.Duration)
		if err != nil {
			return nil, fmt.Errorf("parsing dot duration: %w", err)
		}
		damageType := "unknown"
		if d.Dot.DamageType != nil {
			damageType = *d.Dot.DamageType
		}
		return &EffectDesc{
			Type: EffectApplyDOT, EffectName: d.Dot.Name, Value: d.Dot.Value,
			TickInterval: interval, BaseDuration: duration, DamageType: damageType,
		}, nil

	case d.Hot != nil:
		interval, err := time.ParseDuration(d.Hot.Interval)
		if err != nil {
			return nil, fmt.Errorf("parsing hot tick interval: %w", err)
		}
		duration, err := time.ParseDuration(d.Hot.Duration)
		if err != nil {
			return nil, fmt.Errorf("parsing hot duration: %w", err)
		}
		return &EffectDesc{
			Type: EffectApplyEffect, EffectName: d.Hot.Name, Value: d.Hot.Value,
			TickInterval: interval, BaseDuration: duration,
		}, nil

	case d.StatMod != nil:
		duration, err := time.ParseDuration(d.StatMod.Dur)
		if err != nil {
			return nil, fmt.Errorf("parsing stat_mod duration: %w", err)
		}
		return &EffectDesc{
			Type: EffectApplyEffect, StatName: d.StatMod.Stat, StatDelta: d.StatMod.Delta,
			BaseDuration: duration,
		}, nil

	case d.Control != nil:
		duration, err := time.ParseDuration(d.Control.Dur)
		if err != nil {
			return nil, fmt.Errorf("parsing control duration: %w", err)
		}
		return &EffectDesc{Type: EffectApplyEffect, EffectName: d.Control.Name, BaseDuration: duration}, nil
	}

	return nil, fmt.Errorf("empty effect descriptor")
}
