package logging

import "go.uber.org/zap"

// New returns a JSON production logger, or a console logger outside production.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
