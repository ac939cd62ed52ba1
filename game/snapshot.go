package game

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"arenasync/protocol"
)

// Snapshot 区域完整状态。子弹与像素是瞬时的，不写入快照；
// withPlayers 为 false 时省略玩家（存档只保存场景本身）。
func (a *Area) Snapshot(withPlayers bool) protocol.AreaSnapshot {
	s := protocol.AreaSnapshot{
		ID:      a.ID,
		Width:   a.Width,
		Height:  a.Height,
		Walls:   make([]protocol.WallState, 0, len(a.Walls)),
		Props:   make([]protocol.PropState, 0, len(a.Props)),
		Enemies: make([]protocol.EnemyState, 0, len(a.Enemies)),
		Items:   make([]protocol.ItemState, 0, len(a.Items)),
	}
	for _, w := range a.Walls {
		s.Walls = append(s.Walls, w.state(a.Space))
	}
	for _, p := range a.Props {
		if !p.Despawn {
			s.Props = append(s.Props, p.state(a.Space))
		}
	}
	for _, e := range a.Enemies {
		if !e.Despawn {
			s.Enemies = append(s.Enemies, e.state(a.Space))
		}
	}
	for _, it := range a.Items {
		if !it.Despawn {
			s.Items = append(s.Items, it.state(a.Space))
		}
	}
	if withPlayers {
		s.Players = make([]protocol.PlayerState, 0, len(a.Players))
		for _, p := range a.Players {
			if !p.Despawn {
				s.Players = append(s.Players, p.state(a.Space))
			}
		}
	}
	return s
}

// NewAreaFromSnapshot 按快照重建区域
func NewAreaFromSnapshot(s protocol.AreaSnapshot) *Area {
	a := NewArea(s.ID, s.Width, s.Height)
	for _, w := range s.Walls {
		a.addWall(w)
	}
	for _, p := range s.Props {
		a.addProp(p)
	}
	for _, e := range s.Enemies {
		a.addEnemy(e)
	}
	for _, it := range s.Items {
		a.addItem(it)
	}
	for _, p := range s.Players {
		a.addPlayer(p)
	}
	return a
}

// SaveArea 把区域场景（不含玩家）写成 JSON 文档
func SaveArea(path string, a *Area) error {
	b, err := json.MarshalIndent(a.Snapshot(false), "", "  ")
	if err != nil {
		return errors.Wrap(err, "game: encode area")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "game: write %s", path)
	}
	return nil
}

// LoadAreaFile 读取 SaveArea 写出的文档
func LoadAreaFile(path string) (*Area, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "game: read %s", path)
	}
	var s protocol.AreaSnapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrapf(err, "game: decode %s", path)
	}
	if s.ID == "" || s.Width <= 0 || s.Height <= 0 {
		return nil, errors.Errorf("game: %s: area needs an id and a positive size", path)
	}
	return NewAreaFromSnapshot(s), nil
}
