package server

import (
	"github.com/pkg/errors"

	"arenasync/game"
	"arenasync/protocol"
)

// handle 处理一次 Receive 的结果：新连接下发完整区域状态，
// 包经过权限检查后在本地应用并转发给其他连接，Ping 原样回送，断开的连接交由世界清理
func (s *Server) handle(in Incoming) {
	for _, id := range in.Joined {
		for _, a := range s.World.Areas() {
			s.IO.SendOne(id, protocol.LoadArea{Area: a.Snapshot(true)})
		}
		s.log.Infow("client joined", "client", id)
	}

	for _, m := range in.Packets {
		if ping, ok := m.Packet.(protocol.Ping); ok {
			s.IO.SendOne(m.From, ping)
			continue
		}
		if !s.authorize(m.From, m.Packet) {
			s.Metrics.IncUnauthorized()
			s.log.Debugw("unauthorized packet dropped", "client", m.From, "kind", m.Packet.Kind())
			continue
		}
		if err := s.apply(m.Packet); err != nil {
			s.Metrics.IncUnauthorized()
			s.log.Warnw("inconsistent packet dropped", "client", m.From, "kind", m.Packet.Kind(), "err", err)
			continue
		}
		s.IO.SendAllExcept(m.From, m.Packet)
	}

	for _, id := range in.Left {
		s.World.DropClient(id)
		s.log.Infow("client left", "client", id)
	}
}

// authorize 客户端只能创建归自己所有的实体，只能修改自己拥有的实体；
// 掉落物没有所属方，任何客户端都可以移除
func (s *Server) authorize(from protocol.ClientID, pkt protocol.Packet) bool {
	switch p := pkt.(type) {
	case protocol.LoadArea, protocol.PropOwner:
		return false
	case protocol.NewPlayer:
		return p.Owner.Is(from) && s.fresh(p.Area, p.ID)
	case protocol.NewProp:
		return p.Owner.Is(from) && s.fresh(p.Area, p.ID)
	case protocol.NewEnemy:
		return p.Owner.Is(from) && s.fresh(p.Area, p.ID)
	case protocol.NewProjectile:
		return p.Owner.Is(from) && s.fresh(p.Area, p.ID)
	case protocol.NewItem:
		return s.fresh(p.Area, p.ID)
	case protocol.Targeted:
		owner, ok := s.World.OwnerOf(p.Target())
		if !ok {
			return false
		}
		if owner == (protocol.Owner{}) {
			return p.Kind() == protocol.KindRemoveItem
		}
		return owner.Is(from)
	}
	return false
}

// fresh 区域存在且 ID 未被占用
func (s *Server) fresh(area protocol.AreaID, id protocol.EntityID) bool {
	if _, ok := s.World.Area(area); !ok {
		return false
	}
	_, taken := s.World.OwnerOf(area, id)
	return !taken
}

// apply 应用客户端的包。客户端的包与本地状态不一致（例如 ID 指向另一类实体）
// 只影响这一个包，不会让服务器崩溃
func (s *Server) apply(pkt protocol.Packet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(game.InvariantError)
			if !ok {
				panic(r)
			}
			err = errors.Wrap(ie, "apply "+pkt.Kind().String())
		}
	}()
	s.World.Apply(pkt)
	return nil
}
