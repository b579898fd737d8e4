package mqttpub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/prices"
	"github.com/icodeforyou/elpris-go/report"
	"github.com/icodeforyou/elpris-go/types"
	"github.com/icodeforyou/elpris-go/types/maybe"
)

const publishTimeout = 5 * time.Second

type Payload struct {
	Area          types.Area                         `json:"area"`
	Date          string                             `json:"date"`
	UpdatedAt     time.Time                          `json:"updated_at"`
	Mean          maybe.Maybe[float64]               `json:"mean"`
	Cheapest      maybe.Maybe[report.Extreme]        `json:"cheapest"`
	MostExpensive maybe.Maybe[report.Extreme]        `json:"most_expensive"`
	Window        maybe.Maybe[report.ChargingWindow] `json:"window"`
}

func NewPayload(area types.Area, date time.Time, a prices.Analysis, now time.Time) Payload {
	doc := report.NewDocument(area, date, a)
	return Payload{
		Area:          doc.Area,
		Date:          doc.Date,
		UpdatedAt:     now,
		Mean:          doc.Mean,
		Cheapest:      doc.Cheapest,
		MostExpensive: doc.MostExpensive,
		Window:        doc.Window,
	}
}

// The part of mqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

type Publisher struct {
	client client
	conn   mqtt.Client
	logger *slog.Logger
	prefix string
}

func New(cnfg config.AppConfigMqtt) *Publisher {
	logger := slog.Default().With("module", "mqttpub")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID(cnfg.GetClientId())
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected", slog.String("host", cnfg.Host))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqttLogger := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLogger, slog.LevelWarn)

	conn := mqtt.NewClient(opts)
	return &Publisher{
		client: conn,
		conn:   conn,
		logger: logger,
		prefix: cnfg.GetTopicPrefix(),
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.conn.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func (p *Publisher) Disconnect() {
	if p.conn != nil && p.conn.IsConnected() {
		p.conn.Disconnect(250)
	}
}

func (p *Publisher) Topic(area types.Area) string {
	return fmt.Sprintf("%s/%s/analysis", p.prefix, area)
}

// Publish sends the analysis as a retained message, so subscribers get the
// latest one as soon as they connect.
func (p *Publisher) Publish(area types.Area, date time.Time, a prices.Analysis) error {
	payload, err := json.Marshal(NewPayload(area, date, a, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	topic := p.Topic(area)
	token := p.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timeout when publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("error when publishing to %s: %w", topic, err)
	}

	p.logger.Debug("published analysis", slog.String("topic", topic), slog.Int("bytes", len(payload)))
	return nil
}

func (p *Publisher) PricesUpdated(ctx context.Context, area types.Area, date time.Time, a prices.Analysis) {
	if err := p.Publish(area, date, a); err != nil {
		p.logger.Error("publishing analysis failed", slog.Any("error", err))
	}
}
