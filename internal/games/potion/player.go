package potion

import (
	"math"
	"time"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/core"
)

// Player is the alchemist. Position is the top-left corner in world pixels.
type Player struct {
	X, Y  float64
	W, H  float64
	Lives int

	speed  float64
	area   core.Box // Where the player may stand
	facing [2]float64

	invulnerability   time.Duration
	invulnerableUntil time.Duration

	shootCooldown time.Duration
	lastShot      time.Duration
	hasShot       bool

	projectile config.PlayerConfig
}

// NewPlayer places a player centered horizontally near the bottom of the
// world, facing right.
func NewPlayer(cfg config.PotionConfig) *Player {
	w, h := float64(cfg.Player.Width), float64(cfg.Player.Height)
	floor := float64(cfg.Window.ArenaFloorY)

	p := &Player{
		W:               w,
		H:               h,
		Lives:           cfg.Player.StartLives,
		speed:           cfg.Player.Speed,
		area:            core.NewBox(0, floor, float64(cfg.Window.Width), float64(cfg.Window.Height)-floor),
		facing:          [2]float64{1, 0},
		invulnerability: time.Duration(cfg.Player.InvulnerabilityMS) * time.Millisecond,
		shootCooldown:   time.Duration(cfg.Player.ShootCooldownMS) * time.Millisecond,
		projectile:      cfg.Player,
	}
	p.X = float64(cfg.Window.Width)/2 - w/2
	p.Y = float64(cfg.Window.Height) - 100 - h/2
	p.clamp()
	return p
}

// Box returns the player's bounding box.
func (p *Player) Box() core.Box {
	return core.NewBox(p.X, p.Y, p.W, p.H)
}

// Center returns the center of the player.
func (p *Player) Center() (float64, float64) {
	return p.Box().Center()
}

// Move moves the player in direction (dx, dy). Diagonals are normalized
// so they are not faster than straight moves. A non-zero move also sets
// the direction projectiles are thrown in.
func (p *Player) Move(dx, dy float64) {
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dx, dy = dx/length, dy/length
	p.facing = [2]float64{dx, dy}
	p.X += dx * p.speed
	p.Y += dy * p.speed
	p.clamp()
}

func (p *Player) clamp() {
	p.X = core.ClampF(p.X, p.area.X, p.area.Right()-p.W)
	p.Y = core.ClampF(p.Y, p.area.Y, p.area.Bottom()-p.H)
}

// Facing returns the unit direction of the last movement.
func (p *Player) Facing() (float64, float64) {
	return p.facing[0], p.facing[1]
}

// Invulnerable reports whether damage is currently ignored.
func (p *Player) Invulnerable(now time.Duration) bool {
	return now < p.invulnerableUntil
}

// TakeDamage removes n lives unless the player is invulnerable, then
// starts a new invulnerability window. Lives never drop below zero.
// It returns whether damage was applied.
func (p *Player) TakeDamage(n int, now time.Duration) bool {
	if n <= 0 || p.Invulnerable(now) {
		return false
	}
	p.Lives = core.Max(p.Lives-n, 0)
	p.invulnerableUntil = now + p.invulnerability
	return true
}

// Alive reports whether the player has lives left.
func (p *Player) Alive() bool {
	return p.Lives > 0
}

// TryShoot throws a projectile from the player's center in the facing
// direction, unless the shoot cooldown has not elapsed yet.
func (p *Player) TryShoot(now time.Duration) (*Projectile, bool) {
	if p.hasShot && now-p.lastShot <= p.shootCooldown {
		return nil, false
	}
	p.lastShot = now
	p.hasShot = true

	cx, cy := p.Center()
	return &Projectile{
		X:     cx,
		Y:     cy,
		DX:    p.facing[0],
		DY:    p.facing[1],
		Speed: p.projectile.ProjectileSpeed,
		W:     float64(p.projectile.ProjectileWidth),
		H:     float64(p.projectile.ProjectileHeight),
	}, true
}

// Projectile is a thrown potion. Position is its center.
type Projectile struct {
	X, Y   float64
	DX, DY float64 // Unit direction
	Speed  float64
	W, H   float64 // Size when flying horizontally
}

// Box returns the projectile's bounding box, rotated for mostly vertical flight.
func (pr *Projectile) Box() core.Box {
	w, h := pr.W, pr.H
	if math.Abs(pr.DY) > math.Abs(pr.DX) {
		w, h = h, w
	}
	return core.NewBox(pr.X-w/2, pr.Y-h/2, w, h)
}

// Advance moves the projectile by one tick.
func (pr *Projectile) Advance() {
	pr.X += pr.DX * pr.Speed
	pr.Y += pr.DY * pr.Speed
}
