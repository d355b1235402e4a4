package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type OpenPlayStackProps struct {
	awscdk.StackProps
}

func NewOpenPlayStack(scope constructs.Construct, id string, props *OpenPlayStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	summaries := awss3.NewBucket(stack, jsii.String("SessionSummaries"), &awss3.BucketProps{
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
	})

	lambdaFn := awslambda.NewFunction(stack, jsii.String("OpenPlayApi"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_PROVIDED_AL2023(),
		Handler: jsii.String("bootstrap"),
		Code:    awslambda.Code_FromAsset(jsii.String("../dist"), nil),
		Timeout: awscdk.Duration_Seconds(jsii.Number(30)),
		// One venue, one writer.
		ReservedConcurrentExecutions: jsii.Number(1),

		Environment: &map[string]*string{
			"APP":               jsii.String("prod"),
			"POSTGRES_DSN":      jsii.String(os.Getenv("POSTGRES_DSN")),
			"OPERATOR_PIN_HASH": jsii.String(os.Getenv("OPERATOR_PIN_HASH")),
			"SYNC_BUCKET":       summaries.BucketName(),
		},
	})

	summaries.GrantPut(lambdaFn, nil)

	awsapigateway.NewLambdaRestApi(stack, jsii.String("OpenPlayApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("SummaryBucket"), &awscdk.CfnOutputProps{Value: summaries.BucketName()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewOpenPlayStack(app, "OpenPlayStack", &OpenPlayStackProps{})
	app.Synth(nil)
}
