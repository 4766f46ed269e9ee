package route

import "github.com/sirupsen/logrus"

// log 路径模块的日志记录器
var log = logrus.WithField("module", "route")
