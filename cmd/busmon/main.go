package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/motor.go/pkg/comm/mqtt"
	"github.com/robotalks/motor.go/pkg/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/motor/"
)

func init() {
	if val := os.Getenv("MOTOR_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.ConnectAndWait(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, mqtt.TopicMeta) {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		log.Printf("%s: %s", topic, describe(typed, msg))
	}))
	<-(chan struct{})(nil)
}
