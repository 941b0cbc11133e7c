package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type LeagueStackProps struct {
	awscdk.StackProps
}

// NewLeagueStack deploys the API as a single Lambda behind API Gateway. The
// database lives outside the stack and is passed in through POSTGRES_DSN.
func NewLeagueStack(scope constructs.Construct, id string, props *LeagueStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	lambdaFn := awslambda.NewFunction(stack, jsii.String("LeagueApi"), &awslambda.FunctionProps{
		Runtime:    awslambda.Runtime_PROVIDED_AL2023(),
		Handler:    jsii.String("bootstrap"),
		Code:       awslambda.Code_FromAsset(jsii.String("../dist"), nil),
		MemorySize: jsii.Number(256),
		Timeout:    awscdk.Duration_Seconds(jsii.Number(15)),
		Environment: &map[string]*string{
			"APP":                   jsii.String("prod"),
			"LOG_LEVEL":             jsii.String("info"),
			"POSTGRES_DSN":          jsii.String(os.Getenv("POSTGRES_DSN")),
			"LEAGUE_WRITE_KEY_HASH": jsii.String(os.Getenv("LEAGUE_WRITE_KEY_HASH")),
			"METRICS_ENABLED":       jsii.String("false"),
		},
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("LeagueApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewLeagueStack(app, "VolleyballLeagueStack", &LeagueStackProps{})
	app.Synth(nil)
}
