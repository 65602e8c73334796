package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "Variant Browser Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the Variant Browser API!"
	SERVICE_DESCRIPTION ServiceInfo = "Variant to patient lookup across short-read and long-read sequencing datasets."

	SERVICE_ARTIFACT    ServiceInfo = "varbrowser"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.varbrowser:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
)
