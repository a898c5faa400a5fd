// Package messaging is a small broker-agnostic publish/consume API over NATS
// and Kafka. Business code depends on Publisher and Consumer only, so the
// broker is a configuration choice.
package messaging
