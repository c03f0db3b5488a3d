package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cloudpico-weather/internal/config"
	"cloudpico-weather/internal/geo"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	permissionResponseFilter = "devices/+/permission/response"
	locationFilter           = "devices/+/location"
	qos                      = byte(1)
)

// Client is the request/answer link to a device that owns a GPS receiver.
// Every request carries a request_id; the device echoes it in its answer.
type Client struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	pendingMu sync.Mutex
	pending   map[string]chan answer

	// publish is swapped in tests.
	publish func(topic string, payload []byte) error
}

type permissionRequest struct {
	RequestID string `json:"request_id"`
}

type fixRequest struct {
	RequestID    string `json:"request_id"`
	HighAccuracy bool   `json:"high_accuracy"`
	TimeoutMS    int64  `json:"timeout_ms"`
	MaximumAgeMS int64  `json:"maximum_age_ms"`
}

// answer covers both permission responses and location fixes.
type answer struct {
	RequestID string   `json:"request_id"`
	State     string   `json:"state,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	AccuracyM *float64 `json:"accuracy_m,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	c := &Client{
		cfg:     cfg,
		logger:  logger.With("component", "mqtt"),
		stopCh:  make(chan struct{}),
		pending: make(map[string]chan answer),
	}
	c.publish = c.publishToBroker

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		c.logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		c.logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// Connect establishes the broker connection and subscribes to device answers.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return fmt.Errorf("client stopped")
	default:
	}

	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			break
		}

		select {
		case <-ctx.Done():
			c.client.Disconnect(0)
			return ctx.Err()
		case <-c.stopCh:
			c.client.Disconnect(0)
			return fmt.Errorf("client stopped")
		default:
		}
	}

	for _, filter := range []string{permissionResponseFilter, locationFilter} {
		if err := c.subscribe(filter); err != nil {
			c.client.Disconnect(0)
			return fmt.Errorf("subscribe: %w", err)
		}
	}
	return nil
}

func (c *Client) subscribe(filter string) error {
	token := c.client.Subscribe(filter, qos, func(_ mqtt.Client, msg mqtt.Message) {
		c.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", filter)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", filter, token.Error())
	}
	c.logger.Info("subscribed to mqtt topic", "topic", filter, "qos", qos)
	return nil
}

// RequestPermission shows the location prompt on the device and waits for
// the user's answer.
func (c *Client) RequestPermission(ctx context.Context, deviceID string) (geo.Permission, error) {
	id := uuid.NewString()
	ans, err := c.roundTrip(ctx, deviceID, "permission/request", id, permissionRequest{RequestID: id})
	if err != nil {
		return "", err
	}
	if ans.Error != "" {
		return "", &geo.DeviceError{Message: ans.Error}
	}
	return geo.Permission(ans.State), nil
}

// RequestFix asks for a fresh high-accuracy fix. The device is told the
// remaining time on ctx so it can give up on its own.
func (c *Client) RequestFix(ctx context.Context, deviceID string) (geo.Position, error) {
	id := uuid.NewString()
	req := fixRequest{RequestID: id, HighAccuracy: true, TimeoutMS: geo.DefaultFixTimeout.Milliseconds()}
	if deadline, ok := ctx.Deadline(); ok {
		req.TimeoutMS = time.Until(deadline).Milliseconds()
	}
	ans, err := c.roundTrip(ctx, deviceID, "location/request", id, req)
	if err != nil {
		return geo.Position{}, err
	}
	if ans.Error != "" {
		return geo.Position{}, &geo.DeviceError{Message: ans.Error}
	}
	return geo.Position{Latitude: *ans.Latitude, Longitude: *ans.Longitude}, nil
}

func (c *Client) roundTrip(ctx context.Context, deviceID, suffix, requestID string, body any) (answer, error) {
	if deviceID == "" || strings.ContainsAny(deviceID, "/+#") {
		return answer{}, fmt.Errorf("invalid device id %q", deviceID)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return answer{}, fmt.Errorf("encode request: %w", err)
	}

	ch := make(chan answer, 1)
	c.pendingMu.Lock()
	c.pending[requestID] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, requestID)
		c.pendingMu.Unlock()
	}()

	topic := "devices/" + deviceID + "/" + suffix
	if err := c.publish(topic, payload); err != nil {
		return answer{}, fmt.Errorf("publish %s: %w", topic, err)
	}
	c.logger.Debug("sent device request", "topic", topic, "request_id", requestID)

	select {
	case ans := <-ch:
		return ans, nil
	case <-ctx.Done():
		return answer{}, ctx.Err()
	case <-c.stopCh:
		return answer{}, fmt.Errorf("client stopped")
	}
}

func (c *Client) publishToBroker(topic string, payload []byte) error {
	if !c.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	token := c.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	return token.Error()
}

func (c *Client) handleMessage(topic string, payload []byte) {
	c.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	kind, ok := answerKind(topic)
	if !ok {
		c.logger.Warn("unexpected topic", "topic", topic)
		return
	}

	var ans answer
	if err := json.Unmarshal(payload, &ans); err != nil {
		c.logger.Warn("failed to parse device answer",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}
	if err := validateAnswer(kind, ans); err != nil {
		c.logger.Warn("invalid device answer",
			"topic", topic,
			"request_id", ans.RequestID,
			"error", err,
		)
		return
	}

	c.pendingMu.Lock()
	ch, found := c.pending[ans.RequestID]
	c.pendingMu.Unlock()
	if !found {
		c.logger.Debug("answer without pending request", "topic", topic, "request_id", ans.RequestID)
		return
	}
	select {
	case ch <- ans:
	default:
	}
}

// answerKind returns "permission" or "location" for answer topics.
func answerKind(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	switch {
	case len(parts) == 4 && parts[0] == "devices" && parts[2] == "permission" && parts[3] == "response":
		return "permission", true
	case len(parts) == 3 && parts[0] == "devices" && parts[2] == "location":
		return "location", true
	}
	return "", false
}

func validateAnswer(kind string, a answer) error {
	if a.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if a.Error != "" {
		return nil
	}
	switch kind {
	case "permission":
		if !geo.Permission(a.State).Valid() {
			return fmt.Errorf("unknown permission state %q", a.State)
		}
	case "location":
		if a.Latitude == nil || a.Longitude == nil {
			return fmt.Errorf("latitude and longitude are required")
		}
		if *a.Latitude < -90 || *a.Latitude > 90 {
			return fmt.Errorf("latitude out of range: %f", *a.Latitude)
		}
		if *a.Longitude < -180 || *a.Longitude > 180 {
			return fmt.Errorf("longitude out of range: %f", *a.Longitude)
		}
	}
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client and closes the MQTT connection. Pending
// requests are released. Safe to call more than once.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })

	if c.client != nil && c.IsConnected() {
		token := c.client.Unsubscribe(permissionResponseFilter, locationFilter)
		token.WaitTimeout(2 * time.Second)
	}
	if c.client != nil {
		c.client.Disconnect(250)
	}

	c.setConnected(false)
	c.logger.Info("mqtt client disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
