package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config 进程启动时加载一次的全部可调参数，加载后只读
type Config struct {
	// Server
	ListenAddr     string `yaml:"listen_addr"`
	LogFile        string `yaml:"log_file"`
	LogLevel       string `yaml:"log_level"`
	Codec          string `yaml:"codec"` // json | msgpack
	TickIntervalMs int    `yaml:"tick_interval_ms"`
	MaxPlayers     int    `yaml:"max_players"`

	// Game
	GameFirstWaitSeconds float64 `yaml:"game_first_wait_seconds"`
	GameTotalSeconds     float64 `yaml:"game_total_seconds"`

	// Map
	MapRadius               float64 `yaml:"map_radius"`
	MapSpawnPointRatio      float64 `yaml:"map_spawn_point_ratio"`
	MapDefaultHeight        float64 `yaml:"map_default_height"`
	MapRespawnHeight        float64 `yaml:"map_respawn_height"`
	MapFirstDisableSeconds  float64 `yaml:"map_first_disable_seconds"`
	MapFirstDisableSize     float64 `yaml:"map_first_disable_size"`
	MapSecondDisableSeconds float64 `yaml:"map_second_disable_seconds"`
	MapSecondDisableSize    float64 `yaml:"map_second_disable_size"`

	// Character
	CharacterRadius         float64 `yaml:"character_radius"`
	CharacterKingRadius     float64 `yaml:"character_king_radius"`
	CharacterWeight         float64 `yaml:"character_weight"`
	CharacterMoveSpeed      float64 `yaml:"character_move_speed"`
	CharacterRotateSpeed    float64 `yaml:"character_rotate_speed"`
	CharacterRushSpeed      float64 `yaml:"character_rush_speed"`
	CharacterRushEndSpeed   float64 `yaml:"character_rush_end_speed"`
	CharacterFriction       float64 `yaml:"character_friction"`
	CharacterMapOutSpeed    float64 `yaml:"character_map_out_speed"`
	CharacterElasticity     float64 `yaml:"character_elasticity"`
	CharacterMaxSpeed       float64 `yaml:"character_max_speed"`
	CharacterFirstSpawnWait float64 `yaml:"character_first_spawn_wait_seconds"`
	CharacterRespawnSeconds float64 `yaml:"character_respawn_seconds"`
	CharacterSpawnSeconds   float64 `yaml:"character_spawn_seconds"`

	// Rush
	RushMaxCount      int     `yaml:"rush_max_count"`
	RushRegenSeconds  float64 `yaml:"rush_regen_seconds"`
	RushRecastSeconds float64 `yaml:"rush_recast_seconds"`

	// Item
	ItemRadius              float64 `yaml:"item_radius"`
	ItemRegenMinSeconds     float64 `yaml:"item_regen_min_seconds"`
	ItemRegenMaxSeconds     float64 `yaml:"item_regen_max_seconds"`
	ItemMaxCount            int     `yaml:"item_max_count"`
	ItemLifeMaxSeconds      float64 `yaml:"item_life_max_seconds"`
	ItemSpawnRadiusRatio    float64 `yaml:"item_spawn_radius_ratio"`
	ItemCloverUnlockSeconds float64 `yaml:"item_clover_unlock_seconds"`
	ItemWeightClover        int     `yaml:"item_weight_clover"`
	ItemWeightFortify       int     `yaml:"item_weight_fortify"`
	ItemWeightGhost         int     `yaml:"item_weight_ghost"`
	ItemWeightStrongWill    int     `yaml:"item_weight_strong_will"`
	ItemWeightSwiftMove     int     `yaml:"item_weight_swift_move"`

	// Buff
	BuffCloverSeconds         float64 `yaml:"buff_clover_seconds"`
	BuffFortifySeconds        float64 `yaml:"buff_fortify_seconds"`
	BuffFortifyWeightRatio    float64 `yaml:"buff_fortify_weight_ratio"`
	BuffGhostSeconds          float64 `yaml:"buff_ghost_seconds"`
	BuffStrongWillSeconds     float64 `yaml:"buff_strong_will_seconds"`
	BuffStrongWillRecastRatio float64 `yaml:"buff_strong_will_recast_ratio"`
	BuffSwiftMoveSeconds      float64 `yaml:"buff_swift_move_seconds"`
	BuffSwiftMoveSpeedRatio   float64 `yaml:"buff_swift_move_speed_ratio"`

	// Score
	ScoreKill           int     `yaml:"score_kill"`
	ScoreDie            int     `yaml:"score_die"`
	ScoreSelfDie        int     `yaml:"score_self_die"`
	ScoreKillerJudgeSec float64 `yaml:"score_killer_judge_seconds"`
}

// Default 内置默认值（配置文件缺失时使用）
func Default() *Config {
	return &Config{
		ListenAddr:     ":8080",
		LogFile:        "app.log",
		LogLevel:       "info",
		Codec:          "json",
		TickIntervalMs: 1000 / 60,
		MaxPlayers:     3,

		GameFirstWaitSeconds: 1.5,
		GameTotalSeconds:     90,

		MapRadius:               1350,
		MapSpawnPointRatio:      0.75,
		MapDefaultHeight:        -84.787506,
		MapRespawnHeight:        -84.787506,
		MapFirstDisableSeconds:  30,
		MapFirstDisableSize:     1100,
		MapSecondDisableSeconds: 60,
		MapSecondDisableSize:    850,

		CharacterRadius:         150,
		CharacterKingRadius:     190,
		CharacterWeight:         10,
		CharacterMoveSpeed:      600,
		CharacterRotateSpeed:    360,
		CharacterRushSpeed:      1000,
		CharacterRushEndSpeed:   20,
		CharacterFriction:       1000,
		CharacterMapOutSpeed:    300,
		CharacterElasticity:     1,
		CharacterMaxSpeed:       2000,
		CharacterFirstSpawnWait: 1.5,
		CharacterRespawnSeconds: 1.5,
		CharacterSpawnSeconds:   1.5,

		RushMaxCount:      3,
		RushRegenSeconds:  7,
		RushRecastSeconds: 1,

		ItemRadius:              60,
		ItemRegenMinSeconds:     3,
		ItemRegenMaxSeconds:     6,
		ItemMaxCount:            3,
		ItemLifeMaxSeconds:      10,
		ItemSpawnRadiusRatio:    0.9,
		ItemCloverUnlockSeconds: 30,
		ItemWeightClover:        1,
		ItemWeightFortify:       3,
		ItemWeightGhost:         2,
		ItemWeightStrongWill:    3,
		ItemWeightSwiftMove:     3,

		BuffCloverSeconds:         5,
		BuffFortifySeconds:        5,
		BuffFortifyWeightRatio:    3,
		BuffGhostSeconds:          3,
		BuffStrongWillSeconds:     5,
		BuffStrongWillRecastRatio: 0.5,
		BuffSwiftMoveSeconds:      5,
		BuffSwiftMoveSpeedRatio:   1.5,

		ScoreKill:           1,
		ScoreDie:            -1,
		ScoreSelfDie:        -1,
		ScoreKillerJudgeSec: 1,
	}
}

// TickInterval 房间推进间隔
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// Validate 检查配置是否可用于创建房间
func (c *Config) Validate() error {
	var errs []error
	if c.TickIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval_ms must be positive, got %d", c.TickIntervalMs))
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > 4 {
		errs = append(errs, fmt.Errorf("max_players must be within 2..4, got %d", c.MaxPlayers))
	}
	if c.MapRadius <= 0 {
		errs = append(errs, fmt.Errorf("map_radius must be positive, got %v", c.MapRadius))
	}
	if c.MapFirstDisableSize > c.MapRadius || c.MapSecondDisableSize > c.MapFirstDisableSize {
		errs = append(errs, errors.New("map disable sizes must shrink monotonically"))
	}
	if c.MapSecondDisableSeconds < c.MapFirstDisableSeconds {
		errs = append(errs, errors.New("map_second_disable_seconds must not precede map_first_disable_seconds"))
	}
	if c.CharacterRadius <= 0 || c.CharacterKingRadius <= 0 {
		errs = append(errs, errors.New("character radii must be positive"))
	}
	if c.CharacterWeight <= 0 {
		errs = append(errs, fmt.Errorf("character_weight must be positive, got %v", c.CharacterWeight))
	}
	if c.RushMaxCount <= 0 {
		errs = append(errs, fmt.Errorf("rush_max_count must be positive, got %d", c.RushMaxCount))
	}
	if c.ItemRadius <= 0 {
		errs = append(errs, fmt.Errorf("item_radius must be positive, got %v", c.ItemRadius))
	}
	if c.ItemRegenMinSeconds > c.ItemRegenMaxSeconds {
		errs = append(errs, errors.New("item_regen_min_seconds must not exceed item_regen_max_seconds"))
	}
	if c.ItemMaxCount < 0 {
		errs = append(errs, fmt.Errorf("item_max_count must not be negative, got %d", c.ItemMaxCount))
	}
	if c.Codec != "json" && c.Codec != "msgpack" {
		errs = append(errs, fmt.Errorf("codec must be json or msgpack, got %q", c.Codec))
	}
	return multierr.Combine(errs...)
}

// LoadResult 加载结果：配置本身以及非致命的诊断信息
type LoadResult struct {
	Config   *Config
	Warnings []string
	Created  bool // 文件不存在，已写出默认配置
}

// Load 从 YAML 文件读取配置；未知字段忽略并给出诊断，文件缺失时回退到默认值
func Load(path string) (*LoadResult, error) {
	res := &LoadResult{Config: Default()}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("config file %s not found, using built-in defaults", path))
		if err := Save(path, res.Config); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("write default config: %v", err))
		} else {
			res.Created = true
		}
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := decode(raw, res.Config, true); err != nil {
		// 未知字段：记录诊断后宽松解析
		res.Warnings = append(res.Warnings, fmt.Sprintf("config %s: %v", path, err))
		res.Config = Default()
		if err := decode(raw, res.Config, false); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := res.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return res, nil
}

func decode(raw []byte, into *Config, strict bool) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(strict)
	return dec.Decode(into)
}

// Save 将配置写为 YAML 文件
func Save(path string, c *Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
