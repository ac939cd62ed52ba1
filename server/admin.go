package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"arenasync/protocol"
)

var errUnknownArea = errors.New("server: unknown area")

// HandleAdminConfig 提供运行参数的读取与更新（热更新）
// GET /admin/config  返回当前配置
// POST /admin/config 以 JSON 载荷更新部分字段，在下一次 Tick 生效
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		TickRate        *int `json:"tickRate,omitempty"`
		CorrectionEvery *int `json:"correctionEvery,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		cur := s.Settings()
		writeJSON(w, http.StatusOK, cfg{TickRate: &cur.TickRate, CorrectionEvery: &cur.CorrectionEvery})
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		next := s.Settings()
		if body.TickRate != nil {
			next.TickRate = *body.TickRate
		}
		if body.CorrectionEvery != nil {
			next.CorrectionEvery = *body.CorrectionEvery
		}
		if next.TickRate <= 0 || next.TickRate > 1000 || next.CorrectionEvery <= 0 {
			http.Error(w, "values out of range", http.StatusBadRequest)
			return
		}
		if !s.Enqueue(func(s *Server) { s.applySettings(next) }) {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleSave 把区域场景写入存档文件
// POST /admin/save?area=arena
func (s *Server) HandleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	area := protocol.AreaID(r.URL.Query().Get("area"))
	type result struct {
		area protocol.AreaID
		err  error
	}
	done := make(chan result, 1)
	if !s.Enqueue(func(s *Server) {
		id := area
		if id == "" {
			if areas := s.World.Areas(); len(areas) > 0 {
				id = areas[0].ID
			}
		}
		done <- result{area: id, err: s.saveArea(id, "")}
	}) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	select {
	case res := <-done:
		if res.err != nil {
			s.log.Errorw("save failed", "area", res.area, "err", res.err)
			http.Error(w, res.err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "area": res.area, "file": s.saveFile})
	case <-time.After(5 * time.Second):
		http.Error(w, "tick loop not responding", http.StatusGatewayTimeout)
	case <-r.Context().Done():
	}
}

// HandleMetrics 输出运行指标
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"peers":   s.IO.PeerCount(),
		"metrics": s.Metrics.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
