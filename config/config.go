package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"kaboo-server/game"
)

// BotProfile holds the behaviour knobs of one computer-controlled difficulty tier.
// Chances are percentages in 0..100.
type BotProfile struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
	DelayMinMS int    `json:"delay_min_ms"`
	DelayMaxMS int    `json:"delay_max_ms"`
	// ForgetChance is the probability to drop each remembered card after a turn.
	ForgetChance int `json:"forget_chance"`
	// NoiseChance is the probability to take a random legal choice instead of the best one.
	NoiseChance int `json:"noise_chance"`
	// KabooThreshold: call Kaboo once the estimated own hand value is at or below it.
	KabooThreshold int `json:"kaboo_threshold"`
	TapChance      int `json:"tap_chance"`
}

// Config holds all configurable game and server parameters.
type Config struct {
	HandSize     int `json:"hand_size"`
	InitialLooks int `json:"initial_looks"`
	Jokers       int `json:"jokers"`
	KabooPenalty int `json:"kaboo_penalty"`
	TargetScore  int `json:"target_score"`
	MaxPlayers   int `json:"max_players"`

	// FaceValues maps a rank ("J", "Q", "K", "A", "joker", or a number) to its score.
	FaceValues map[string]int `json:"face_values"`
	// EffectTable maps a rank to the effect unlocked by discarding it.
	EffectTable map[string]string `json:"effect_table"`

	DealSettleMS   int `json:"deal_settle_ms"`
	PeekDisplayMS  int `json:"peek_display_ms"`
	BotStepDelayMS int `json:"bot_step_delay_ms"`

	HTTPPort      int     `json:"http_port"`
	DatabaseURL   string  `json:"database_url"`
	AuthBaseURL   string  `json:"auth_base_url"`
	MoveRateLimit float64 `json:"move_rate_limit"` // moves per second per seat
	MoveBurst     int     `json:"move_burst"`
	MaxNameLength int     `json:"max_name_length"`

	BotProfiles []BotProfile `json:"bot_profiles"`
}

// Defaults returns a Config with the standard table rules.
func Defaults() *Config {
	return &Config{
		HandSize:     4,
		InitialLooks: 2,
		Jokers:       2,
		KabooPenalty: 20,
		TargetScore:  100,
		MaxPlayers:   6,
		FaceValues: map[string]int{
			"J":     11,
			"Q":     12,
			"K":     13,
			"A":     1,
			"joker": -1,
		},
		EffectTable: map[string]string{
			"7":  "peek_own",
			"8":  "peek_own",
			"9":  "peek_opponent",
			"10": "peek_opponent",
			"J":  "blind_swap",
			"Q":  "semi_blind_swap",
			"K":  "full_vision_swap",
		},
		DealSettleMS:   1200,
		PeekDisplayMS:  3000,
		BotStepDelayMS: 900,
		HTTPPort:       8080,
		MoveRateLimit:  8,
		MoveBurst:      16,
		MaxNameLength:  24,
		BotProfiles: []BotProfile{
			{Name: "Pip", Difficulty: "easy", DelayMinMS: 600, DelayMaxMS: 1400, ForgetChance: 35, NoiseChance: 40, KabooThreshold: 4, TapChance: 20},
			{Name: "Marlow", Difficulty: "medium", DelayMinMS: 500, DelayMaxMS: 1100, ForgetChance: 12, NoiseChance: 15, KabooThreshold: 8, TapChance: 60},
			{Name: "Vesper", Difficulty: "hard", DelayMinMS: 400, DelayMaxMS: 900, ForgetChance: 0, NoiseChance: 0, KabooThreshold: 10, TapChance: 95},
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "err", err)
		}
	}

	overrideInt(&cfg.HandSize, "HAND_SIZE")
	overrideInt(&cfg.InitialLooks, "INITIAL_LOOKS")
	overrideInt(&cfg.Jokers, "JOKERS")
	overrideInt(&cfg.KabooPenalty, "KABOO_PENALTY")
	overrideInt(&cfg.TargetScore, "TARGET_SCORE")
	overrideInt(&cfg.MaxPlayers, "MAX_PLAYERS")
	overrideInt(&cfg.DealSettleMS, "DEAL_SETTLE_MS")
	overrideInt(&cfg.PeekDisplayMS, "PEEK_DISPLAY_MS")
	overrideInt(&cfg.BotStepDelayMS, "BOT_STEP_DELAY_MS")
	overrideInt(&cfg.HTTPPort, "HTTP_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideFloat(&cfg.MoveRateLimit, "MOVE_RATE_LIMIT")
	overrideInt(&cfg.MoveBurst, "MOVE_BURST")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")

	return cfg
}

// Rules projects the rule fields into a game.Rules. Unknown effect names are an error.
func (c *Config) Rules() (game.Rules, error) {
	r := game.Rules{
		HandSize:     c.HandSize,
		InitialLooks: c.InitialLooks,
		Jokers:       c.Jokers,
		KabooPenalty: c.KabooPenalty,
		TargetScore:  c.TargetScore,
		FaceValues:   make(map[game.Rank]int, len(c.FaceValues)),
		Effects:      make(map[game.Rank]game.EffectType, len(c.EffectTable)),
	}
	for rank, v := range c.FaceValues {
		r.FaceValues[game.Rank(rank)] = v
	}
	for rank, name := range c.EffectTable {
		eff, ok := game.ParseEffectType(name)
		if !ok {
			return game.Rules{}, fmt.Errorf("effect_table[%s]: unknown effect %q", rank, name)
		}
		r.Effects[game.Rank(rank)] = eff
	}
	if r.HandSize < 1 {
		return game.Rules{}, fmt.Errorf("hand_size must be positive, got %d", r.HandSize)
	}
	return r, nil
}

// Profile returns the bot profile for a difficulty, falling back to the first profile.
func (c *Config) Profile(difficulty string) BotProfile {
	for _, p := range c.BotProfiles {
		if p.Difficulty == difficulty {
			return p
		}
	}
	if len(c.BotProfiles) > 0 {
		return c.BotProfiles[0]
	}
	return BotProfile{Name: "Bot", Difficulty: difficulty}
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid env value", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*field = f
		} else {
			slog.Warn("invalid env value", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
