package game

import (
	"sort"

	"go.uber.org/zap"

	"arenasync/protocol"
)

// Outbox 世界产生的包的去向：服务器广播给所有客户端，客户端发往服务器
type Outbox interface {
	Send(p protocol.Packet)
}

// OutboxFunc 函数适配器
type OutboxFunc func(p protocol.Packet)

func (f OutboxFunc) Send(p protocol.Packet) { f(p) }

// World 本进程加载的所有区域。只由 Tick 协程访问。
type World struct {
	// Local 本进程身份：服务器为 ServerOwner()，客户端为 ClientOwner(自身 ID)
	Local protocol.Owner
	// CorrectionEvery 位置修正间隔（Tick）
	CorrectionEvery int

	areas map[protocol.AreaID]*Area
	out   Outbox
	log   *zap.SugaredLogger
}

// NewWorld 创建世界；out 为空时产生的包被丢弃
func NewWorld(local protocol.Owner, out Outbox, log *zap.SugaredLogger) *World {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &World{
		Local:           local,
		CorrectionEvery: DefaultCorrectionEvery,
		areas:           make(map[protocol.AreaID]*Area),
		out:             out,
		log:             log,
	}
}

// AddArea 加载区域，同 ID 的旧区域先被卸载（重复收到 LoadArea 时）
func (w *World) AddArea(a *Area) {
	if w.UnloadArea(a.ID) {
		w.log.Infow("area replaced", "area", a.ID)
	}
	a.world = w
	w.areas[a.ID] = a
}

// Area 按 ID 查找区域
func (w *World) Area(id protocol.AreaID) (*Area, bool) {
	a, ok := w.areas[id]
	return a, ok
}

// Areas 按 ID 排序的所有区域
func (w *World) Areas() []*Area {
	out := make([]*Area, 0, len(w.areas))
	for _, a := range w.areas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnloadArea 卸载区域，其物理空间与所有实体随之丢弃
func (w *World) UnloadArea(id protocol.AreaID) bool {
	a, ok := w.areas[id]
	if !ok {
		return false
	}
	a.world = nil
	a.Space = nil
	a.Players, a.Enemies, a.Props, a.Items = nil, nil, nil, nil
	a.Projectiles, a.Pixels, a.Walls = nil, nil, nil
	delete(w.areas, id)
	return true
}

// Tick 推进所有区域
func (w *World) Tick(dt float64) {
	for _, a := range w.Areas() {
		a.Tick(dt)
	}
}

// OwnerOf 实体的权威方。掉落物没有所属方，返回零值 Owner。
func (w *World) OwnerOf(area protocol.AreaID, id protocol.EntityID) (protocol.Owner, bool) {
	a, ok := w.areas[area]
	if !ok {
		return protocol.Owner{}, false
	}
	if p := a.Player(id); p != nil {
		return p.Owner, true
	}
	if e := a.Enemy(id); e != nil {
		return e.Owner, true
	}
	if p := a.Prop(id); p != nil {
		return p.Owner, true
	}
	if p := a.Projectile(id); p != nil {
		return p.Owner, true
	}
	if it := a.Item(id); it != nil {
		return protocol.Owner{}, true
	}
	return protocol.Owner{}, false
}

// DropClient 参与者断开：移除其玩家，其余实体交给本进程接管
func (w *World) DropClient(id protocol.ClientID) {
	for _, a := range w.Areas() {
		for _, p := range a.Players {
			if p.Owner.Is(id) && !p.Despawn {
				p.Despawn = true
				w.send(protocol.RemovePlayer{Area: a.ID, ID: p.ID})
			}
		}
		for _, p := range a.Props {
			if p.Owner.Is(id) && !p.Despawn {
				p.handOver(a.Space, w.Local)
				w.send(protocol.PropOwner{Area: a.ID, ID: p.ID, Owner: w.Local})
			}
		}
		for _, e := range a.Enemies {
			if e.Owner.Is(id) && !e.Despawn {
				e.Despawn = true
				w.send(protocol.RemoveEnemy{Area: a.ID, ID: e.ID})
			}
		}
	}
	w.log.Infow("client dropped", "client", id)
}

func (w *World) send(p protocol.Packet) {
	if w.out != nil {
		w.out.Send(p)
	}
}
