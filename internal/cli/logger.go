package cli

// quietLogger drops everything; used for --quiet.
type quietLogger struct{}

func (quietLogger) Infof(string, ...interface{})    {}
func (quietLogger) Warningf(string, ...interface{}) {}
func (quietLogger) Errorf(string, ...interface{})   {}
