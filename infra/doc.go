// Package infra holds the adapters around the prediction core: table
// readers, the zerolog logger, metrics exporters and the MQTT publisher.
// They depend on core interfaces and never the other way round.
package infra
