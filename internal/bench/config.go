package bench

type Config struct {
	RawDev *RawDev `flagly:"handler"`
	LogW   *LogW   `flagly:"handler"`
}

func (c *Config) FlaglyDesc() string {
	return "benchmark device performance"
}
