package ic

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const refreshSendBuffer = 8

type changeType string

const (
	changeTypeRebuilding changeType = "rebuilding"
	changeTypeReload     changeType = "reload"
	changeTypeError      changeType = "error"
)

type refreshPayload struct {
	ChangeType changeType `json:"changeType"`
	Profiles   []string   `json:"profiles,omitempty"`
	Message    string     `json:"message,omitempty"`
	At         time.Time  `json:"at"`
}

// clientManager fans refresh payloads out to every connected browser.
type clientManager struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan refreshPayload
	done       chan struct{}
}

type client struct {
	id   string
	send chan refreshPayload
}

func newClientManager() *clientManager {
	return &clientManager{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan refreshPayload),
		done:       make(chan struct{}),
	}
}

// start runs until stop is called. Slow clients miss payloads rather than
// blocking the others.
func (manager *clientManager) start() {
	for {
		select {
		case client := <-manager.register:
			manager.clients[client] = true
		case client := <-manager.unregister:
			if _, ok := manager.clients[client]; ok {
				delete(manager.clients, client)
				close(client.send)
			}
		case msg := <-manager.broadcast:
			for client := range manager.clients {
				select {
				case client.send <- msg:
				default:
				}
			}
		case <-manager.done:
			for client := range manager.clients {
				delete(manager.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (manager *clientManager) stop() {
	close(manager.done)
}

func (manager *clientManager) send(rp refreshPayload) {
	if rp.At.IsZero() {
		rp.At = time.Now()
	}
	select {
	case manager.broadcast <- rp:
	case <-manager.done:
	}
}

func (manager *clientManager) drop(cl *client) {
	select {
	case manager.unregister <- cl:
	case <-manager.done:
	}
}

var upgrader = websocket.Upgrader{
	// The refresh server only ever listens on localhost in dev.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsHandler(manager *clientManager, logger Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorf("error upgrading refresh connection: %v", err)
			return
		}
		defer conn.Close()

		cl := &client{id: r.RemoteAddr, send: make(chan refreshPayload, refreshSendBuffer)}
		select {
		case manager.register <- cl:
		case <-manager.done:
			return
		}

		// Browsers never send anything; reading only detects the close.
		go func() {
			for {
				if _, _, err := conn.NextReader(); err != nil {
					manager.drop(cl)
					return
				}
			}
		}()

		for msg := range cl.send {
			if err := conn.WriteJSON(msg); err != nil {
				manager.drop(cl)
				for range cl.send {
				}
				return
			}
		}
	}
}

func GetRefreshScript() string {
	if !GetIsDev() {
		return ""
	}
	return "\n<script>\n" + GetRefreshScriptInner(getRefreshServerPort()) + "\n</script>"
}

func GetRefreshScriptInner(port int) string {
	return fmt.Sprintf(refreshScriptFmt, port)
}

// changeTypes: "rebuilding", "reload", "error"
const refreshScriptFmt = `
const scrollYKey = "__critsplit_internal__devScrollY";
const scrollY = localStorage.getItem(scrollYKey);
if (scrollY) {
	setTimeout(() => {
		localStorage.removeItem(scrollYKey);
		window.scrollTo({ top: scrollY, behavior: "smooth" });
	}, 150);
}

const ws = new WebSocket("ws://localhost:%d/ws");

ws.onmessage = (e) => {
	const { changeType, profiles, message } = JSON.parse(e.data);
	if (changeType == "rebuilding") {
		console.log("CRITSPLIT DEV: rebuilding", profiles || "");
		const el = document.createElement("div");
		el.id = "__critsplit-rebuilding";
		el.innerHTML = "Rebuilding...";
		el.style.position = "fixed";
		el.style.inset = "0";
		el.style.display = "flex";
		el.style.justifyContent = "center";
		el.style.alignItems = "center";
		el.style.backgroundColor = "#333a";
		el.style.color = "white";
		el.style.fontSize = "7vw";
		el.style.zIndex = "1000";
		document.body.appendChild(el);
	}
	if (changeType == "error") {
		console.error("CRITSPLIT DEV: build failed:", message);
		document.getElementById("__critsplit-rebuilding")?.remove();
	}
	if (changeType == "reload") {
		if (window.scrollY > 0) {
			localStorage.setItem(scrollYKey, window.scrollY);
		}
		window.location.reload();
	}
};

ws.onclose = () => console.log("CRITSPLIT DEV: refresh server disconnected");
`
