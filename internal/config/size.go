package config

import "github.com/openwebos/pmlogdaemon/internal/sizeparse"

func sizeParse(s string) (int64, error) {
	return sizeparse.Parse(s)
}

func clampMaxSize(v int64) (int64, bool) {
	return sizeparse.Clamp(v, MinMaxSize, MaxMaxSize)
}

func clampRotations(v int) (int, bool) {
	return sizeparse.ClampInt(v, MinRotations, MaxRotations)
}
