package server

import (
	"encoding/json"
	"net/http"

	"gopkg.in/yaml.v3"
)

// HandleAdminConfig 输出当前生效的配置（只读；配置加载后不可变）
// GET /admin/config
func (m *Manager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(m.cfg); err != nil {
		Log.Errorf("encode config: %v", err)
	}
}

// HandleMetrics 输出所有运行中房间的指标
// GET /metrics
func (m *Manager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	rooms := make([]map[string]any, 0, len(m.rooms))
	for id, e := range m.rooms {
		clients := make([]string, 0, len(e.clients))
		for _, c := range e.clients {
			clients = append(clients, c.ID)
		}
		rooms = append(rooms, map[string]any{
			"room":    id,
			"clients": clients,
			"metrics": e.metrics.Snapshot(),
		})
	}
	m.mu.RUnlock()

	payload := map[string]any{
		"waiting": m.Waiting(),
		"pending": m.Pending(),
		"rooms":   rooms,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// HandleHealthz 存活检查
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}
