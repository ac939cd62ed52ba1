package game

import "github.com/go-gl/mathgl/mgl64"

const (
	PlayerMaxHealth     = 100
	PlayerSpeed         = 160.0 // 水平移动速度
	PlayerJumpSpeed     = 420.0
	PlayerFireCooldown  = 0.25 // 秒
	PlayerContactDamage = 5    // 与敌人接触时每次受到的伤害
	ContactCooldown     = 0.5  // 接触伤害间隔（秒）
	MedkitHeal          = 25
	InventorySize       = 4
	ItemStackMax        = 99

	ProjectileSpeed    = 600.0
	ProjectileLifetime = 1.5 // 秒
	ProjectileDamage   = 10
	ProjectileTrail    = 3 // 每隔多少 Tick 留一个轨迹像素

	EnemyMaxHealth  = 30
	EnemySpeed      = 60.0
	EnemySeparation = 28.0 // 敌人之间小于该距离时互相推开
	EnemyPush       = 40.0

	PixelLifetime = 0.6
	BurstPixels   = 8
	BurstSpeed    = 120.0

	// DefaultCorrectionEvery 默认每 30 Tick 发送一次位置修正
	DefaultCorrectionEvery = 30
)

var (
	PlayerHalf     = mgl64.Vec2{8, 14}
	EnemyHalf      = mgl64.Vec2{10, 10}
	ItemHalf       = mgl64.Vec2{4, 4}
	ProjectileHalf = mgl64.Vec2{2, 2}
)

// 碰撞体标签，写入 resolv 对象用于查询过滤
const (
	TagPlayer     = "player"
	TagEnemy      = "enemy"
	TagProp       = "prop"
	TagItem       = "item"
	TagProjectile = "projectile"
	TagWall       = "wall"
)
