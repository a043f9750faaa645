package entities

import (
	"fmt"
	"time"
)

// CharacterResources tracks the spendable points a character carries
type CharacterResources struct {
	Determination    int `json:"determination"`
	MaxDetermination int `json:"max_determination"`
}

// SpendDetermination uses one point, returning false when none is left
func (r *CharacterResources) SpendDetermination() bool {
	if r.Determination <= 0 {
		return false
	}
	r.Determination--
	return true
}

// AdjustDetermination applies delta clamped to [0, MaxDetermination] and
// returns the change actually applied.
func (r *CharacterResources) AdjustDetermination(delta int) int {
	before := r.Determination
	r.Determination = min(max(0, r.Determination+delta), r.MaxDetermination)
	return r.Determination - before
}

// ResourcePool is the momentum and threat shared by a channel
type ResourcePool struct {
	GuildID     string    `json:"guild_id"`
	ChannelID   string    `json:"channel_id"`
	Momentum    int       `json:"momentum"`
	Threat      int       `json:"threat"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewResourcePool returns an empty pool for a channel
func NewResourcePool(guildID, channelID string) *ResourcePool {
	return &ResourcePool{GuildID: guildID, ChannelID: channelID}
}

// PoolKey identifies the pool of a channel
func PoolKey(guildID, channelID string) string {
	return fmt.Sprintf("%s:%s", guildID, channelID)
}

// Key identifies the pool
func (p *ResourcePool) Key() string {
	return PoolKey(p.GuildID, p.ChannelID)
}

// Apply adds the deltas, clamping each counter at zero independently
func (p *ResourcePool) Apply(momentum, threat int, now time.Time) {
	p.Momentum = max(0, p.Momentum+momentum)
	p.Threat = max(0, p.Threat+threat)
	p.LastUpdated = now
}

// Reset zeroes both counters
func (p *ResourcePool) Reset(now time.Time) {
	p.Momentum = 0
	p.Threat = 0
	p.LastUpdated = now
}
