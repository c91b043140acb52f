package ic

import (
	"fmt"
	"os"
	"strconv"
)

const (
	modeKey              = "CRITSPLIT_ENV_MODE"
	devModeVal           = "development"
	refreshServerPortKey = "CRITSPLIT_ENV_REFRESH_SERVER_PORT"
	trueStr              = "true"
	isBuildTimeKey       = "CRITSPLIT_ENV_IS_BUILD_TIME"
)

func GetIsDev() bool {
	return os.Getenv(modeKey) == devModeVal
}

func setModeToDev() {
	os.Setenv(modeKey, devModeVal)
}

func getRefreshServerPort() int {
	port, err := strconv.Atoi(os.Getenv(refreshServerPortKey))
	if err != nil {
		return 0
	}
	return port
}

func setRefreshServerPort(port int) {
	os.Setenv(refreshServerPortKey, fmt.Sprintf("%d", port))
}

func setIsBuildTime(val bool) {
	if val {
		os.Setenv(isBuildTimeKey, trueStr)
	} else {
		os.Setenv(isBuildTimeKey, "")
	}
}

func getIsBuildTime() bool {
	return os.Getenv(isBuildTimeKey) == trueStr
}
