package logging_test

import (
	"github.com/grovetools/dashboard/logging"
	"github.com/sirupsen/logrus"
)

func ExampleNewLogger() {
	// Create a logger for your component
	log := logging.NewLogger("projects")

	log.Debug("Cache hit")
	log.Info("Loading collection")

	// Add structured fields
	log.WithFields(logrus.Fields{
		"kind":  "product-versions",
		"scope": "project-1",
	}).Info("Joined in-flight request")

	// Use WithError for errors
	// log.WithError(err).Error("Fetch failed")
}
