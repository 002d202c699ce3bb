// Package endpoint derives request hosts for the service catalog and
// carries per-service wire-dialect metadata.
package endpoint

// Protocol is the wire dialect a service speaks.
type Protocol int

const (
	// Query: form-encoded POST body, XML response.
	Query Protocol = iota
	// JSON: single JSON body with an X-Amz-Target header, JSON response.
	JSON
	// RestJSON: method+path encode the operation, JSON bodies.
	RestJSON
	// RestXML: method+path encode the operation, XML bodies.
	RestXML
)

// Service describes one catalog entry.
type Service struct {
	// ID is the caller-facing name ("ec2", "elbv2").
	ID string
	// Prefix is the endpoint hostname prefix; defaults to ID.
	Prefix string
	// SigningName is the SigV4 service name; defaults to Prefix.
	SigningName string
	Protocol    Protocol
	// APIVersion fills the Query protocol's Version parameter.
	APIVersion string
	// Target is the JSON protocol's operation-name prefix
	// (X-Amz-Target: Target.Operation).
	Target string
	// JSONVersion selects the application/x-amz-json media type ("1.0"/"1.1").
	JSONVersion string
	// Global services have one partition-wide endpoint and sign as us-east-1.
	Global bool
}

// EndpointPrefix returns the hostname prefix.
func (s Service) EndpointPrefix() string {
	if s.Prefix != "" {
		return s.Prefix
	}
	return s.ID
}

// Signing returns the SigV4 service name.
func (s Service) Signing() string {
	if s.SigningName != "" {
		return s.SigningName
	}
	return s.EndpointPrefix()
}

// catalog is the fixed set of addressable services. Callers name services
// by ID; anything else is an error at the adapter layer.
var catalog = []Service{
	// Query protocol (form POST, XML responses).
	{ID: "ec2", Protocol: Query, APIVersion: "2016-11-15"},
	{ID: "iam", Protocol: Query, APIVersion: "2010-05-08", Global: true},
	{ID: "sts", Protocol: Query, APIVersion: "2011-06-15"},
	{ID: "rds", Protocol: Query, APIVersion: "2014-10-31"},
	{ID: "sqs", Protocol: Query, APIVersion: "2012-11-05"},
	{ID: "sns", Protocol: Query, APIVersion: "2010-03-31"},
	{ID: "cloudformation", Protocol: Query, APIVersion: "2010-05-15"},
	{ID: "autoscaling", Protocol: Query, APIVersion: "2011-01-01"},
	{ID: "elbv2", Prefix: "elasticloadbalancing", Protocol: Query, APIVersion: "2015-12-01"},
	{ID: "cloudwatch", Prefix: "monitoring", Protocol: Query, APIVersion: "2010-08-01"},
	{ID: "elasticache", Protocol: Query, APIVersion: "2015-02-02"},
	{ID: "redshift", Protocol: Query, APIVersion: "2012-12-01"},

	// JSON target protocol.
	{ID: "dynamodb", Protocol: JSON, Target: "DynamoDB_20120810", JSONVersion: "1.0"},
	{ID: "ecs", Protocol: JSON, Target: "AmazonEC2ContainerServiceV20141113", JSONVersion: "1.1"},
	{ID: "kms", Protocol: JSON, Target: "TrentService", JSONVersion: "1.1"},
	{ID: "secretsmanager", Protocol: JSON, Target: "secretsmanager", JSONVersion: "1.1"},
	{ID: "logs", Protocol: JSON, Target: "Logs_20140328", JSONVersion: "1.1"},
	{ID: "events", Protocol: JSON, Target: "AWSEvents", JSONVersion: "1.1"},
	{ID: "ssm", Protocol: JSON, Target: "AmazonSSM", JSONVersion: "1.1"},
	{ID: "states", Protocol: JSON, Target: "AWSStepFunctions", JSONVersion: "1.0"},
	{ID: "athena", Protocol: JSON, Target: "AmazonAthena", JSONVersion: "1.1"},
	{ID: "glue", Protocol: JSON, Target: "AWSGlue", JSONVersion: "1.1"},
	{ID: "cloudtrail", Protocol: JSON, Target: "com.amazonaws.cloudtrail.v20131101.CloudTrail_20131101", JSONVersion: "1.1"},
	{ID: "ecr", Prefix: "api.ecr", SigningName: "ecr", Protocol: JSON, Target: "AmazonEC2ContainerRegistry_V20150921", JSONVersion: "1.1"},

	// REST-JSON.
	{ID: "lambda", Protocol: RestJSON},
	{ID: "eks", Protocol: RestJSON},
	{ID: "apigateway", Protocol: RestJSON},
	{ID: "es", Protocol: RestJSON},

	// REST-XML.
	{ID: "s3", Protocol: RestXML},
	{ID: "route53", Protocol: RestXML, Global: true},
	{ID: "cloudfront", Protocol: RestXML, Global: true},
}

var byID = func() map[string]Service {
	m := make(map[string]Service, len(catalog))
	for _, s := range catalog {
		m[s.ID] = s
	}
	return m
}()

// Lookup returns the catalog entry for a service ID.
func Lookup(id string) (Service, bool) {
	s, ok := byID[id]
	return s, ok
}

// Services returns all catalog IDs (for CLI help), sorted by catalog order.
func Services() []Service {
	out := make([]Service, len(catalog))
	copy(out, catalog)
	return out
}
