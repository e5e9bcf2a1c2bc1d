package sink

import (
	"github.com/m-mizutani/goerr/v2"

	"anspacker/internal/logger"
	"anspacker/internal/packer"
)

// LoggerSink mirrors run output into the structured application log.
type LoggerSink struct {
	log       logger.Logger
	component string
	fields    map[string]interface{}
}

func NewLoggerSink(log logger.Logger, fields map[string]interface{}) *LoggerSink {
	return &LoggerSink{log: log, component: "PackRun", fields: fields}
}

func (s *LoggerSink) Log(message string, level packer.Level) {
	switch level {
	case packer.LevelError:
		s.log.Error(s.component, goerr.New(message, goerr.V("line", message)), s.fields)
	case packer.LevelWarning:
		s.log.Warning(s.component, message, s.fields)
	case packer.LevelPlain:
		s.log.Debug(s.component, message, s.fields)
	default:
		s.log.Info(s.component, message, s.fields)
	}
}
