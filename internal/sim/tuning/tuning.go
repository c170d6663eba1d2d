package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gridadventure/internal/sim/component"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Entities EntityDefaults `yaml:"entities"`
	Engine   EngineDefaults `yaml:"engine"`
}

// EntityDefaults are the component values construction helpers use when the
// caller does not pass one explicitly.
type EntityDefaults struct {
	AgentHealth     int    `yaml:"agent_health"`
	CoinReward      int    `yaml:"coin_reward"`
	FloorCost       int    `yaml:"floor_cost"`
	LavaDamage      int    `yaml:"lava_damage"`
	RobotDamage     int    `yaml:"robot_damage"`
	KeyID           string `yaml:"key_id"`
	SpeedMultiplier int    `yaml:"speed_multiplier"`
	SpeedDuration   int    `yaml:"speed_duration"`
	PhasingDuration int    `yaml:"phasing_duration"`
	ShieldUsage     int    `yaml:"shield_usage"`
	MoveSpeed       int    `yaml:"move_speed"`
	OnCollision     string `yaml:"on_collision"`
	Direction       string `yaml:"direction"`
}

// EngineDefaults seed the metadata of levels built without explicit rules.
type EngineDefaults struct {
	Movement  string `yaml:"movement"`
	Objective string `yaml:"objective"`
	TurnLimit int    `yaml:"turn_limit"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		Entities: EntityDefaults{
			AgentHealth:     5,
			CoinReward:      5,
			FloorCost:       3,
			LavaDamage:      2,
			RobotDamage:     1,
			KeyID:           "default",
			SpeedMultiplier: 2,
			SpeedDuration:   5,
			PhasingDuration: 5,
			ShieldUsage:     5,
			MoveSpeed:       1,
			OnCollision:     string(component.CollisionBounce),
			Direction:       component.DirDown.String(),
		},
		Engine: EngineDefaults{
			Movement:  "cardinal",
			Objective: "collect_gems_and_exit",
			TurnLimit: 100,
		},
	}
}

// Load reads a YAML file over Defaults, so a file only has to name the
// values it changes.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	e := t.Entities
	if e.AgentHealth <= 0 {
		errs = append(errs, fmt.Errorf("entities.agent_health must be > 0, got %d", e.AgentHealth))
	}
	if e.SpeedMultiplier < 1 {
		errs = append(errs, fmt.Errorf("entities.speed_multiplier must be >= 1, got %d", e.SpeedMultiplier))
	}
	if e.MoveSpeed < 1 {
		errs = append(errs, fmt.Errorf("entities.move_speed must be >= 1, got %d", e.MoveSpeed))
	}
	if e.SpeedDuration <= 0 || e.PhasingDuration <= 0 || e.ShieldUsage <= 0 {
		errs = append(errs, errors.New("entities: effect durations and shield usage must be > 0"))
	}
	if e.KeyID == "" {
		errs = append(errs, errors.New("entities.key_id must not be empty"))
	}
	switch component.CollisionRule(e.OnCollision) {
	case component.CollisionBounce, component.CollisionStop:
	default:
		errs = append(errs, fmt.Errorf("entities.on_collision: unknown rule %q", e.OnCollision))
	}
	if _, ok := component.ParseDirection(e.Direction); !ok {
		errs = append(errs, fmt.Errorf("entities.direction: unknown direction %q", e.Direction))
	}
	if t.Engine.TurnLimit < 0 {
		errs = append(errs, fmt.Errorf("engine.turn_limit must be >= 0, got %d", t.Engine.TurnLimit))
	}
	return errors.Join(errs...)
}

// DefaultDirection is Entities.Direction parsed; Validate guarantees it is known.
func (t Tuning) DefaultDirection() component.Direction {
	d, ok := component.ParseDirection(t.Entities.Direction)
	if !ok {
		return component.DirDown
	}
	return d
}

func (t Tuning) DefaultCollision() component.CollisionRule {
	return component.CollisionRule(t.Entities.OnCollision)
}

// Digest is the hex sha256 of the JSON encoding of t.
func (t Tuning) Digest() string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
