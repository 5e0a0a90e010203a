package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"backend-laufcoach/internal/geo"
)

// Provider query strings cap out; 25 coordinates per request including
// origin and destination.
const maxCoordsPerRequest = 25

// Step is one navigation instruction of a fetched route.
type Step struct {
	Start       geo.Point `json:"start"`
	End         geo.Point `json:"end"`
	Instruction string    `json:"instruction"`
}

// Result is a fetched route: its step list and the decoded overview path.
type Result struct {
	Steps    []Step      `json:"steps"`
	Polyline []geo.Point `json:"polyline"`
}

// Client talks to a Google-Directions-style endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type apiResponse struct {
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Steps []struct {
				StartLocation struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"start_location"`
				EndLocation struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"end_location"`
				HTMLInstructions string `json:"html_instructions"`
				Maneuver         string `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
	Status string `json:"status"`
}

// FetchRoute requests a walking route through the waypoints. Requests are
// chunked so no single query carries more than 25 coordinates, and the legs
// are stitched back together in order.
func (c *Client) FetchRoute(ctx context.Context, origin, dest geo.Point, waypoints []geo.Point) (Result, error) {
	full := make([]geo.Point, 0, len(waypoints)+2)
	full = append(full, origin)
	full = append(full, waypoints...)
	full = append(full, dest)

	var result Result
	for start := 0; start < len(full)-1; {
		end := start + maxCoordsPerRequest - 1
		if end > len(full)-1 {
			end = len(full) - 1
		}

		chunk, err := c.fetchChunk(ctx, full[start], full[end], full[start+1:end])
		if err != nil {
			return Result{}, err
		}

		result.Steps = append(result.Steps, chunk.Steps...)
		if len(result.Polyline) > 0 && len(chunk.Polyline) > 0 {
			// chunk starts where the previous one ended
			chunk.Polyline = chunk.Polyline[1:]
		}
		result.Polyline = append(result.Polyline, chunk.Polyline...)

		start = end
	}
	return result, nil
}

func (c *Client) fetchChunk(ctx context.Context, origin, dest geo.Point, waypoints []geo.Point) (Result, error) {
	params := url.Values{}
	params.Set("origin", formatPoint(origin))
	params.Set("destination", formatPoint(dest))
	if len(waypoints) > 0 {
		parts := make([]string, len(waypoints))
		for i, w := range waypoints {
			parts[i] = formatPoint(w)
		}
		params.Set("waypoints", strings.Join(parts, "|"))
	}
	params.Set("mode", "walking")
	params.Set("language", "de")
	params.Set("key", c.apiKey)

	reqURL := c.baseURL + "/maps/api/directions/json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("directions provider returned status %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("directions response malformed: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return Result{}, fmt.Errorf("no route found (status %s)", parsed.Status)
	}

	var out Result
	route := parsed.Routes[0]
	for _, leg := range route.Legs {
		for _, s := range leg.Steps {
			out.Steps = append(out.Steps, Step{
				Start:       geo.Point{Lat: s.StartLocation.Lat, Lng: s.StartLocation.Lng},
				End:         geo.Point{Lat: s.EndLocation.Lat, Lng: s.EndLocation.Lng},
				Instruction: Instruction(s.Maneuver, s.HTMLInstructions),
			})
		}
	}
	out.Polyline = DecodePolyline(route.OverviewPolyline.Points)
	return out, nil
}

func formatPoint(p geo.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

var maneuverInstructions = map[string]string{
	"turn-right":        "Rechts abbiegen",
	"turn-left":         "Links abbiegen",
	"straight":          "Geradeaus weiter",
	"turn-slight-right": "Leicht rechts abbiegen",
	"turn-slight-left":  "Leicht links abbiegen",
	"keep-right":        "Rechts halten",
	"keep-left":         "Links halten",
	"uturn-left":        "Wenden nach links",
	"uturn-right":       "Wenden nach rechts",
	"depart":            "Starte",
	"arrive":            "Ziel erreicht",
}

// Instruction maps a provider maneuver to a German phrase, falling back to
// the stripped HTML instruction text.
func Instruction(maneuver, htmlInstruction string) string {
	if text, ok := maneuverInstructions[maneuver]; ok {
		return text
	}
	text := tagPattern.ReplaceAllString(htmlInstruction, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return "Weiterlaufen"
	}
	return text
}
