package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"arenasync/protocol"
)

// DefaultArena 默认场景：四面墙、两块平台、几个箱子（其中一个挂在天花板上）和三个服务器拥有的敌人
func DefaultArena(id protocol.AreaID) protocol.AreaSnapshot {
	const w, h = 800.0, 600.0
	srv := protocol.ServerOwner()
	box := mgl64.Vec2{12, 12}

	return protocol.AreaSnapshot{
		ID:     id,
		Width:  w,
		Height: h,
		Walls: []protocol.WallState{
			{Pos: mgl64.Vec2{w / 2, 10}, Half: mgl64.Vec2{w / 2, 10}},
			{Pos: mgl64.Vec2{w / 2, h - 10}, Half: mgl64.Vec2{w / 2, 10}},
			{Pos: mgl64.Vec2{10, h / 2}, Half: mgl64.Vec2{10, h / 2}},
			{Pos: mgl64.Vec2{w - 10, h / 2}, Half: mgl64.Vec2{10, h / 2}},
			{Pos: mgl64.Vec2{200, 160}, Half: mgl64.Vec2{80, 8}},
			{Pos: mgl64.Vec2{600, 260}, Half: mgl64.Vec2{80, 8}},
		},
		Props: []protocol.PropState{
			{ID: protocol.NewEntityID(), Owner: srv, Pos: mgl64.Vec2{320, 32}, Half: box},
			{ID: protocol.NewEntityID(), Owner: srv, Pos: mgl64.Vec2{346, 32}, Half: box},
			{ID: protocol.NewEntityID(), Owner: srv, Pos: mgl64.Vec2{200, 180}, Half: box},
			{ID: protocol.NewEntityID(), Owner: srv, Pos: mgl64.Vec2{460, 420}, Half: box,
				Tether: &protocol.Tether{Anchor: mgl64.Vec2{400, 560}, Length: 100}},
		},
		Enemies: []protocol.EnemyState{
			{ID: protocol.NewEntityID(), Owner: srv, Pos: mgl64.Vec2{120, 40}, Health: EnemyMaxHealth},
			{ID: protocol.NewEntityID(), Owner: srv, Pos: mgl64.Vec2{680, 40}, Health: EnemyMaxHealth},
			{ID: protocol.NewEntityID(), Owner: srv, Pos: mgl64.Vec2{600, 290}, Health: EnemyMaxHealth},
		},
		Items: []protocol.ItemState{
			{ID: protocol.NewEntityID(), Pos: mgl64.Vec2{560, 24}, Item: protocol.ItemStack{Kind: protocol.ItemMedkit, Count: 1}},
			{ID: protocol.NewEntityID(), Pos: mgl64.Vec2{240, 24}, Item: protocol.ItemStack{Kind: protocol.ItemScrap, Count: 2}},
		},
	}
}
