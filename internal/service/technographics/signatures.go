package technographics

// Signal categories produced by website inspection.
const (
	CategoryCloudProvider = "cloud_provider"
	CategoryCMS           = "cms"
	CategoryEcommerce     = "ecommerce"
	CategoryAnalytics     = "analytics"
	CategoryCDN           = "cdn"
	CategoryDatabase      = "database"
	CategoryFrontend      = "frontend"
	CategoryBackend       = "backend"
)

// signature describes how a technology shows up in a fetched page.
type signature struct {
	patterns []string // substrings matched against the lowercased body
	headers  []string // prefixes matched against response header names/values
	category string
}

// Detection table for observable technologies. Pattern matching is
// deliberately loose; a false positive only nudges counts, it never
// drives a hard decision on its own.
var techSignatures = map[string]signature{
	// Cloud providers
	"aws": {
		patterns: []string{"amazonaws.com", "aws-", "cloudfront.net", "elasticbeanstalk.com"},
		headers:  []string{"x-amz-", "x-amzn-"},
		category: CategoryCloudProvider,
	},
	"azure": {
		patterns: []string{"azurewebsites.net", "blob.core.windows.net", "azure.com"},
		headers:  []string{"x-ms-"},
		category: CategoryCloudProvider,
	},
	"gcp": {
		patterns: []string{"googleapis.com", "googleusercontent.com", "appspot.com"},
		headers:  []string{"x-goog-"},
		category: CategoryCloudProvider,
	},

	// Web platforms
	"wordpress": {
		patterns: []string{"/wp-content/", "/wp-includes/", "wordpress"},
		category: CategoryCMS,
	},
	"magento": {
		patterns: []string{"/skin/frontend/", "magento", "/customer/account/"},
		category: CategoryEcommerce,
	},
	"shopify": {
		patterns: []string{"cdn.shopify.com", "myshopify.com"},
		category: CategoryEcommerce,
	},

	// Analytics
	"google_analytics": {
		patterns: []string{"google-analytics.com", "gtag.js", "ga.js"},
		category: CategoryAnalytics,
	},
	"hotjar": {
		patterns: []string{"hotjar.com"},
		category: CategoryAnalytics,
	},

	// CDN
	"cloudflare": {
		patterns: []string{"cloudflare.com"},
		headers:  []string{"cf-ray", "cf-cache-status"},
		category: CategoryCDN,
	},
	"akamai": {
		patterns: []string{"akamai.net"},
		headers:  []string{"x-akamai-"},
		category: CategoryCDN,
	},

	// Databases (indicators only)
	"mongodb": {
		patterns: []string{"mongodb"},
		category: CategoryDatabase,
	},
	"mysql": {
		patterns: []string{"mysql"},
		category: CategoryDatabase,
	},
	"postgresql": {
		patterns: []string{"postgresql", "postgres"},
		category: CategoryDatabase,
	},

	// Frontend frameworks
	"react": {
		patterns: []string{"react", "_next", "jsx"},
		category: CategoryFrontend,
	},
	"angular": {
		patterns: []string{"ng-", "angular"},
		category: CategoryFrontend,
	},
	"vue": {
		patterns: []string{"vue", "v-"},
		category: CategoryFrontend,
	},

	// Backend platforms
	"nodejs": {
		patterns: []string{"express", "x-powered-by: express"},
		category: CategoryBackend,
	},
	"php": {
		patterns: []string{".php", "x-powered-by: php"},
		category: CategoryBackend,
	},
	"java": {
		patterns: []string{".jsp", "java", "spring"},
		category: CategoryBackend,
	},
	"dotnet": {
		patterns: []string{".aspx", ".asp", "asp.net"},
		headers:  []string{"x-aspnet-version"},
		category: CategoryBackend,
	},
}

// Indicators of individual managed services on the target platform.
var targetServiceIndicators = map[string][]string{
	"s3":                {"s3.amazonaws.com", "s3-", "static content", "media storage"},
	"cloudfront":        {"cloudfront.net", "cdn", "content delivery"},
	"ec2":               {"compute", "server", "instances"},
	"rds":               {"database", "mysql", "postgresql", "aurora"},
	"lambda":            {"serverless", "functions", "api gateway"},
	"elastic_beanstalk": {"elasticbeanstalk.com", "eb-"},
	"ecs":               {"container", "docker", "kubernetes"},
	"dynamodb":          {"nosql", "dynamodb"},
	"redshift":          {"data warehouse", "analytics", "bi"},
	"sagemaker":         {"machine learning", "ml", "ai"},
}

// CMS names recognized in meta generator tags.
var generatorCMSNames = []string{"wordpress", "drupal", "joomla", "wix", "squarespace"}

// Frameworks recognized in script src attributes.
var scriptLibraries = []string{"jquery", "bootstrap", "react", "angular", "vue"}

var modernFrontendFrameworks = []string{"react", "angular", "vue"}

// TargetProviderName is the technology key representing the target cloud.
const TargetProviderName = "aws"
