package livemap

import (
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"sprintrace/pkg/caster"
	"sprintrace/pkg/highscore"
	"sprintrace/pkg/layout"
	"sprintrace/pkg/model"
	"sprintrace/pkg/resources"
	"sprintrace/pkg/session"
)

const frameInterval = 100 * time.Millisecond

var upgrader = websocket.Upgrader{} // use default options

type LiveMap struct {
	runner           *session.Runner
	input            *session.Input
	ledger           *highscore.Ledger
	svgTrackResource resources.Resource
	svgMetadata      layout.Metadata
	controls         caster.JSON[model.Controls]
	frames           caster.JSON[session.Frame]
	mu               sync.Mutex
}

// NewLiveMap registers the live view routes on r. The SVG resource must carry layout metadata.
func NewLiveMap(r *mux.Router, runner *session.Runner, input *session.Input, ledger *highscore.Ledger, svgTrackResource resources.Resource) (*LiveMap, error) {
	metadata, err := layout.ReadMetadata(svgTrackResource.FilePath())
	if err != nil {
		return nil, err
	}
	lm := &LiveMap{
		runner:           runner,
		input:            input,
		ledger:           ledger,
		svgTrackResource: svgTrackResource,
		svgMetadata:      metadata,
	}
	lm.addHandlers(r)
	return lm, nil
}

// Frame returns the current frame with car positions in map pixels.
func (lm *LiveMap) Frame() session.Frame {
	frame, _ := lm.runner.Frame()
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for i, car := range frame.Cars {
		frame.Cars[i].X, frame.Cars[i].Z = lm.svgMetadata.ToImage(car.X, car.Z)
	}
	return frame
}

func (lm *LiveMap) websocketHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}
		defer c.Close()

		closed := make(chan struct{})
		go lm.readControls(c, closed)

		t := time.NewTicker(frameInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				message, err := lm.frames.To(lm.Frame())
				if err != nil {
					log.Println("marshal:", err)
					return
				}
				err = c.WriteMessage(websocket.TextMessage, []byte(message))
				if err != nil {
					log.Println("write:", err)
					return
				}
			case <-closed:
				log.Print("websocket closed\n")
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}

// readControls feeds client messages into the input; a dropped client releases every control.
func (lm *LiveMap) readControls(c *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	defer lm.input.Reset()
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			return
		}
		controls, err := lm.controls.FromBytes(message)
		if err != nil {
			log.Printf("ignoring control message %q: %s\n", message, err)
			continue
		}
		lm.input.Set(controls)
	}
}

type Data struct {
	WebSocketURL string
	TrackURL     string
	Width        int
	Height       int
}

func (lm *LiveMap) livemapHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		e := Data{
			WebSocketURL: "ws://" + r.Host + "/livemap",
			TrackURL:     "http://" + r.Host + "/resources/" + lm.svgTrackResource.FileName(),
			Width:        int(lm.svgMetadata.Width),
			Height:       int(lm.svgMetadata.Height),
		}
		if err := homeTemplate.Execute(w, e); err != nil {
			log.Printf("rendering live page: %s\n", err)
		}
	}
}

func (lm *LiveMap) addHandlers(r *mux.Router) {
	r.HandleFunc("/livemap", lm.websocketHandler())
	r.HandleFunc("/live", lm.livemapHandler()).Methods(http.MethodGet)
	r.HandleFunc("/race", lm.startRaceHandler()).Methods(http.MethodPost)
	r.HandleFunc("/status", lm.statusHandler()).Methods(http.MethodGet)
	r.HandleFunc("/highscores", lm.highscoresHandler()).Methods(http.MethodGet)
}

var homeTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Sprint Race</title>
  <style>
    body { font-family: monospace; background: #1e1e1e; color: #eeeeee; }
    #hud span { margin-right: 2em; }
    #track { position: relative; width: {{ .Width }}px; height: {{ .Height }}px; }
    #track > div, #track > svg { position: absolute; top: 0; left: 0; }
    #map svg { width: {{ .Width }}px; height: {{ .Height }}px; }
  </style>
</head>
<body>
  <div id="hud">
    <span id="lap"></span><span id="checkpoint"></span><span id="gear"></span>
    <span id="speed"></span><span id="time"></span>
  </div>
  <div id="status"></div>
  <button id="start">New race</button>
  <div id="track">
    <div id="map"></div>
    <svg id="cars" width="{{ .Width }}" height="{{ .Height }}" xmlns="http://www.w3.org/2000/svg"></svg>
  </div>

  <script>
    const trackUrl = '{{ .TrackURL }}';
    const wsUrl = '{{ .WebSocketURL }}';
    const carsLayer = document.getElementById('cars');
    const cars = new Map();
    const colors = { player: '#E7E772', ai: '#D64B4B' };

    const socket = new WebSocket(wsUrl);
    const keys = new Set();

    function controls(shiftUp) {
      let throttle = 0;
      if (keys.has('ArrowUp') || keys.has('w')) throttle += 1;
      if (keys.has('ArrowDown') || keys.has('s')) throttle -= 1;
      let steer = 0;
      if (keys.has('ArrowRight') || keys.has('d')) steer += 1;
      if (keys.has('ArrowLeft') || keys.has('a')) steer -= 1;
      return { throttle: throttle, steer: steer, brake: keys.has(' '), shiftUp: shiftUp };
    }

    function send(shiftUp) {
      if (socket.readyState === WebSocket.OPEN) {
        socket.send(JSON.stringify(controls(shiftUp)));
      }
    }

    window.addEventListener('keydown', (event) => {
      if (event.repeat) return;
      keys.add(event.key);
      send(event.key === 'q' || event.key === 'Q');
    });
    window.addEventListener('keyup', (event) => {
      keys.delete(event.key);
      send(false);
    });

    document.getElementById('start').addEventListener('click', async () => {
      await fetch('/race', { method: 'POST' });
    });

    socket.addEventListener('message', (event) => {
      const frame = JSON.parse(event.data);
      const s = frame.status;
      document.getElementById('lap').textContent = 'Track: ' + s.distanceKm.toFixed(2) + ' / ' + s.totalKm.toFixed(2) + ' km';
      document.getElementById('checkpoint').textContent = 'Checkpoint: ' + s.checkpoints + '/' + s.checkpointTotal;
      document.getElementById('gear').textContent = 'Gear: ' + s.gear + '/' + s.maxGear;
      document.getElementById('speed').textContent = 'Speed: ' + s.speedKmh + ' km/h';
      document.getElementById('time').textContent = 'Time: ' + s.elapsed;
      document.getElementById('status').textContent = s.statusLine;

      for (const car of frame.cars) {
        let el = cars.get(car.id);
        if (!el) {
          el = document.createElementNS('http://www.w3.org/2000/svg', 'circle');
          el.setAttribute('r', 6);
          el.setAttribute('stroke', '#111111');
          el.setAttribute('fill', colors[car.id] || '#EEEEEE');
          carsLayer.appendChild(el);
          cars.set(car.id, el);
        }
        el.setAttribute('cx', car.x);
        el.setAttribute('cy', car.z);
      }
    });

    socket.addEventListener('close', (event) => {
      console.log('WebSocket connection closed:', event);
    });

    async function downloadAndDisplaySVG(url) {
      try {
        const response = await fetch(url);
        if (!response.ok) {
          throw new Error(` + "`Failed to fetch SVG: ${response.statusText}`" + `);
        }
        document.getElementById('map').innerHTML = await response.text();
      } catch (error) {
        console.error(error.message);
      }
    }

    downloadAndDisplaySVG(trackUrl);
  </script>
</body>
</html>
`))
