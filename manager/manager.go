package manager

import (
	"github.com/sangneko/Chat-AI/logging"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}
